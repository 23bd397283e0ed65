package core

import "thrustctl/protocol"

// Default deadzone mapping bounds
const (
	DefaultDeadzone   = 0.05
	DefaultSaturation = 0.95
)

// Sampler produces the local operator's command
type Sampler interface {
	Sample() protocol.ActuatorCommand
}

// SamplerFunc adapts a function to Sampler
type SamplerFunc func() protocol.ActuatorCommand

// Sample calls f
func (f SamplerFunc) Sample() protocol.ActuatorCommand {
	return f()
}

// AxisReader reads the four raw 16-bit stick axes: left x, left y, right x,
// right y. Mid-scale is centre.
type AxisReader interface {
	ReadAxes() [4]uint16
}

// AnalogJoystick samples a two-stick analog joystick
type AnalogJoystick struct {
	Axes       AxisReader
	Deadzone   float32
	Saturation float32
}

// Sample reads the sticks, applies the deadzone and mixes the result
func (j *AnalogJoystick) Sample() protocol.ActuatorCommand {
	lo, hi := j.Deadzone, j.Saturation
	if hi <= lo {
		lo, hi = DefaultDeadzone, DefaultSaturation
	}
	raw := j.Axes.ReadAxes()
	var v [4]float32
	for i := range raw {
		v[i] = MapDeadzone(Centered(raw[i]), lo, hi)
	}
	return Mix(v[0], v[1], v[2], v[3])
}

// Centered maps a raw 16-bit reading to [-1, 1]
func Centered(raw uint16) float32 {
	return clampUnit(float32(raw)/32767.5 - 1)
}

// Mix turns stick positions into thruster axes. The left stick drives the
// differential forward pair, the right stick strafe and vertical.
func Mix(lx, ly, rx, ry float32) protocol.ActuatorCommand {
	return protocol.ActuatorCommand{
		ForwardLeft:  ly + lx,
		ForwardRight: ly - lx,
		Strafe:       rx,
		Vertical:     ry,
	}.Clamp()
}

// MapDeadzone clamps |v| to [lo, hi] and rescales it to [0, 1], keeping the
// sign. Values inside the deadzone become 0, values past hi become ±1.
func MapDeadzone(v, lo, hi float32) float32 {
	mag := v
	if mag < 0 {
		mag = -mag
	}
	if mag < lo {
		mag = lo
	}
	if mag > hi {
		mag = hi
	}
	mag = (mag - lo) / (hi - lo)
	if v < 0 {
		return -mag
	}
	return mag
}

func clampUnit(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
