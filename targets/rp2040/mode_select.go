//go:build rp2040

package main

import (
	"machine"

	"thrustctl/config"
)

// modeStrapPin selects the actuator sink at boot: pulled low for PIO ESCs,
// open for the configured mode
const modeStrapPin = machine.GP22

// GetMode returns the actuator mode for this boot
func GetMode(cfg *config.Config) string {
	modeStrapPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	if !modeStrapPin.Get() {
		return config.ModeESC
	}
	return cfg.Mode
}
