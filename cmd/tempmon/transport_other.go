//go:build !linux

package main

import (
	"tempmon-go/errcode"
	"tempmon-go/i2cbus"
)

func hostFactory() i2cbus.Factory {
	return i2cbus.FactoryFunc(func(int) (i2cbus.Transport, error) {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "init", Msg: "no I2C support on this platform, use --sim"}
	})
}
