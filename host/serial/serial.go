package serial

import (
	"io"

	"thrustctl/config"
)

// Port is the host end of the vehicle link. Tests substitute a pipe.
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input, e.g. bytes from before a reconnect
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate; must match the firmware's link UART
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the link settings the firmware boots with
func DefaultConfig(device string) *Config {
	return FromVehicleConfig(device, config.Default())
}

// FromVehicleConfig derives port settings from a vehicle configuration. An
// empty device falls back to the configured host device.
func FromVehicleConfig(device string, cfg *config.Config) *Config {
	if device == "" {
		device = cfg.Host.Device
	}
	return &Config{
		Device:      device,
		Baud:        int(cfg.Link.Baud),
		ReadTimeout: 100,
	}
}
