package core

import "thrustctl/protocol"

// Actuator channels, in ActuatorCommand.Axes order
const (
	ChannelForwardLeft uint8 = iota
	ChannelForwardRight
	ChannelStrafe
	ChannelVertical

	ChannelCount
)

// ActuatorSink drives one motor channel at a signed speed, where ±127 is
// full scale. Implementations may block for the duration of one packet.
type ActuatorSink interface {
	Drive(channel uint8, speed int8) error
}

// SpeedFromAxis converts a clamped axis value to a sink speed, truncating
// toward zero
func SpeedFromAxis(v float32) int8 {
	switch {
	case v >= 1:
		return 127
	case v <= -1:
		return -127
	case v != v:
		return 0
	}
	return int8(v * 127)
}

// DriveAll sends cmd to all four channels. Every channel is attempted; the
// first error is returned.
func DriveAll(sink ActuatorSink, cmd protocol.ActuatorCommand) error {
	var first error
	for i, v := range cmd.Axes() {
		if err := sink.Drive(uint8(i), SpeedFromAxis(v)); err != nil && first == nil {
			first = err
		}
	}
	return first
}
