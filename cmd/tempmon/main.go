// Command tempmon polls the board temperature sensors over I²C and serves
// the readings on the console and over HTTP.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
