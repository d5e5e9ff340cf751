// Copyright (c) 2016-2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package usb20x

type command byte

// USB-20X vendor requests
const (
	// Digital I/O commands
	commandDigitalTristate command = 0x00
	commandDigitalLatch    command = 0x02
	// Analog output commands (USB-202/205 only)
	commandAnalogOutput command = 0x18
	// Miscellaneous commands
	commandReset     command = 0x42
	commandSerialNum command = 0x48
)

var commands = map[command]string{
	commandDigitalTristate: "Read/write tri-state register",
	commandDigitalLatch:    "Read/write digital port output latch register",
	commandAnalogOutput:    "Read/write analog output channel",
	commandReset:           "Reset device",
	commandSerialNum:       "Read/write serial number",
}

func (c command) String() string {
	return commands[c]
}

// A cleared tristate bit drives the line as an output.
const tristateAllOutputs uint16 = 0x00

const (
	analogOutputChannels = 2
	analogOutputBits     = 12
	analogOutputMaxCount = 1<<analogOutputBits - 1
	// AnalogOutputMaxVolts is the top of the unipolar 0 to 5 V output range.
	AnalogOutputMaxVolts = 5.0
)
