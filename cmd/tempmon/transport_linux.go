//go:build linux

package main

import "tempmon-go/i2cbus"

func hostFactory() i2cbus.Factory { return i2cbus.LinuxFactory{} }
