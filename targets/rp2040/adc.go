//go:build rp2040

package main

import "machine"

// stickAxes reads the two-stick joystick wired to ADC0-ADC3: left x,
// left y, right x, right y
type stickAxes struct {
	channels [4]machine.ADC
}

func newStickAxes() (*stickAxes, error) {
	machine.InitADC()

	s := &stickAxes{channels: [4]machine.ADC{
		{Pin: machine.ADC0},
		{Pin: machine.ADC1},
		{Pin: machine.ADC2},
		{Pin: machine.ADC3},
	}}
	for i := range s.channels {
		if err := s.channels[i].Configure(machine.ADCConfig{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ReadAxes returns the four readings scaled to 16 bits
func (s *stickAxes) ReadAxes() [4]uint16 {
	var out [4]uint16
	for i := range s.channels {
		out[i] = s.channels[i].Get()
	}
	return out
}
