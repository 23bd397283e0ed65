// Package sabertooth drives Sabertooth 2x motor controllers in packetized
// serial mode. Two controllers share one TX line; each runs two motors.
package sabertooth

import (
	"errors"
	"io"
	"time"
)

const (
	// AutobaudByte must be the first byte after power-up
	AutobaudByte = 0xAA

	// PowerUpDelay is how long the controllers need before they listen
	PowerUpDelay = 2 * time.Second

	// DefaultBaud is the controllers' DIP-switch baud rate
	DefaultBaud = 38400
)

// Packet commands
const (
	cmdMotor1Forward  = 0
	cmdMotor1Backward = 1
	cmdMotor2Forward  = 4
	cmdMotor2Backward = 5
)

// ErrChannel is returned for a channel no controller serves
var ErrChannel = errors.New("sabertooth: no such channel")

// Device is a pair of controllers. Channel 0 and 1 are motor 1 and 2 of the
// first address, channel 2 and 3 motor 1 and 2 of the second.
type Device struct {
	w         io.Writer
	addresses [2]uint8
	packet    [4]byte
}

// New creates a Device writing to w. A zero addresses selects 128 and 129.
func New(w io.Writer, addresses [2]uint8) *Device {
	if addresses == [2]uint8{} {
		addresses = [2]uint8{128, 129}
	}
	return &Device{w: w, addresses: addresses}
}

// Init sends the autobaud byte. Call once, PowerUpDelay after power-on.
func (d *Device) Init() error {
	d.packet[0] = AutobaudByte
	_, err := d.w.Write(d.packet[:1])
	return err
}

// Drive sets one motor. speed is signed with ±127 full scale.
func (d *Device) Drive(channel uint8, speed int8) error {
	if channel > 3 {
		return ErrChannel
	}
	address := d.addresses[channel/2]

	forward, backward := uint8(cmdMotor1Forward), uint8(cmdMotor1Backward)
	if channel%2 == 1 {
		forward, backward = cmdMotor2Forward, cmdMotor2Backward
	}

	command, data := forward, magnitude(speed)
	if speed < 0 {
		command = backward
	}

	d.packet = Packet(address, command, data)
	_, err := d.w.Write(d.packet[:])
	return err
}

// Packet builds one command packet: address, command, data and a 7-bit
// checksum of the three
func Packet(address, command, data uint8) [4]byte {
	return [4]byte{address, command, data, (address + command + data) & 0x7F}
}

func magnitude(speed int8) uint8 {
	if speed == -128 {
		return 127
	}
	if speed < 0 {
		return uint8(-speed)
	}
	return uint8(speed)
}
