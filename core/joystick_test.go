package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"thrustctl/protocol"
)

func TestMapDeadzone(t *testing.T) {
	testCases := []struct {
		in, want float32
	}{
		{-0.95, -1},
		{-1, -1},
		{-0.05, 0},
		{0, 0},
		{0.02, 0},
		{0.5, 0.5},
		{0.95, 1},
		{1, 1},
	}
	for _, tc := range testCases {
		require.InDelta(t, tc.want, MapDeadzone(tc.in, 0.05, 0.95), 1e-6, "in=%v", tc.in)
	}
}

func TestMix(t *testing.T) {
	require.Equal(t, protocol.ActuatorCommand{}, Mix(0, 0, 0, 0))
	require.Equal(t,
		protocol.ActuatorCommand{ForwardLeft: 1, ForwardRight: 1, Strafe: 0.25, Vertical: -0.5},
		Mix(0, 1, 0.25, -0.5))

	// Full left stick diagonal saturates one side
	require.Equal(t,
		protocol.ActuatorCommand{ForwardLeft: 1, ForwardRight: 0},
		Mix(0.5, 0.5, 0, 0))
	require.Equal(t,
		protocol.ActuatorCommand{ForwardLeft: 1, ForwardRight: -1},
		Mix(1, 0, 0, 0))
}

type fixedAxes [4]uint16

func (f fixedAxes) ReadAxes() [4]uint16 { return f }

func TestAnalogJoystickCentred(t *testing.T) {
	j := &AnalogJoystick{Axes: fixedAxes{32768, 32767, 32768, 32767}}
	require.Equal(t, protocol.ActuatorCommand{}, j.Sample())
}

func TestAnalogJoystickFullScale(t *testing.T) {
	j := &AnalogJoystick{
		Axes:       fixedAxes{32768, 65535, 0, 65535},
		Deadzone:   DefaultDeadzone,
		Saturation: DefaultSaturation,
	}
	require.Equal(t,
		protocol.ActuatorCommand{ForwardLeft: 1, ForwardRight: 1, Strafe: -1, Vertical: 1},
		j.Sample())
}

func TestCentered(t *testing.T) {
	require.InDelta(t, -1, Centered(0), 1e-6)
	require.InDelta(t, 1, Centered(65535), 1e-6)
	require.InDelta(t, 0, Centered(32768), 1e-4)
}

func TestSamplerFunc(t *testing.T) {
	want := protocol.ActuatorCommand{Vertical: 0.5}
	var s Sampler = SamplerFunc(func() protocol.ActuatorCommand { return want })
	require.Equal(t, want, s.Sample())
}
