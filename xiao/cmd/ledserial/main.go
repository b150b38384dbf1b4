// Command ledserial is the controller firmware for the serial pin backend.
// It runs on a Seeed XIAO RP2040 and is built with TinyGo.
package main

import "machine"

func main() {
	NewDevice(machine.Serial).Run()
}
