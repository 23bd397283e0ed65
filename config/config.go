package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Actuator sink modes
const (
	ModeSabertooth = "sabertooth"
	ModeESC        = "esc"
)

// Config holds the vehicle's tunable parameters. Firmware builds use
// Default(); the host loads the same structure from JSON.
type Config struct {
	// Actuator sink: "sabertooth" or "esc"
	Mode string `json:"mode"`

	// Milliseconds a remote command stays authoritative without traffic
	LivenessTimeoutMs uint32 `json:"liveness_timeout_ms"`

	// Host heartbeat period in milliseconds; must be below the timeout
	HeartbeatIntervalMs uint32 `json:"heartbeat_interval_ms"`

	// SensorStream period in milliseconds
	SensorIntervalMs uint32 `json:"sensor_interval_ms"`

	Link       LinkConfig       `json:"link"`
	Joystick   JoystickConfig   `json:"joystick"`
	Sabertooth SabertoothConfig `json:"sabertooth"`
	ESC        ESCConfig        `json:"esc"`
	Host       HostConfig       `json:"host"`
}

// LinkConfig describes the host link UART
type LinkConfig struct {
	Baud uint32 `json:"baud"`
}

// JoystickConfig holds the deadzone mapping bounds
type JoystickConfig struct {
	Deadzone   float32 `json:"deadzone"`
	Saturation float32 `json:"saturation"`
}

// SabertoothConfig describes the packet-serial motor controllers
type SabertoothConfig struct {
	Baud uint32 `json:"baud"`
	// Controller addresses for the forward pair and the strafe/vertical pair
	Addresses [2]uint8 `json:"addresses"`
}

// ESCConfig describes the PIO-driven ESC outputs
type ESCConfig struct {
	Pins       [4]uint8 `json:"pins"`
	MinPulseUs uint32   `json:"min_pulse_us"`
	MaxPulseUs uint32   `json:"max_pulse_us"`
	PeriodUs   uint32   `json:"period_us"`
}

// HostConfig holds host-side settings
type HostConfig struct {
	Device         string `json:"device"`
	ReplyTimeoutMs uint32 `json:"reply_timeout_ms"`
}

// Load parses a JSON configuration and fills in defaults
func Load(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses a JSON configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *Config) {
	if config.Mode == "" {
		config.Mode = ModeSabertooth
	}

	// Liveness
	if config.LivenessTimeoutMs == 0 {
		config.LivenessTimeoutMs = 500
	}
	if config.HeartbeatIntervalMs == 0 {
		config.HeartbeatIntervalMs = config.LivenessTimeoutMs / 3
	}
	if config.SensorIntervalMs == 0 {
		config.SensorIntervalMs = 100
	}

	if config.Link.Baud == 0 {
		config.Link.Baud = 1000000
	}

	if config.Joystick.Deadzone == 0 {
		config.Joystick.Deadzone = 0.05
	}
	if config.Joystick.Saturation == 0 {
		config.Joystick.Saturation = 0.95
	}

	if config.Sabertooth.Baud == 0 {
		config.Sabertooth.Baud = 38400
	}
	if config.Sabertooth.Addresses == [2]uint8{} {
		config.Sabertooth.Addresses = [2]uint8{128, 129}
	}

	// Standard RC ESC timing
	if config.ESC.MinPulseUs == 0 {
		config.ESC.MinPulseUs = 1000
	}
	if config.ESC.MaxPulseUs == 0 {
		config.ESC.MaxPulseUs = 2000
	}
	if config.ESC.PeriodUs == 0 {
		config.ESC.PeriodUs = 20000
	}
	if config.ESC.Pins == [4]uint8{} {
		config.ESC.Pins = [4]uint8{10, 11, 12, 13}
	}

	if config.Host.ReplyTimeoutMs == 0 {
		config.Host.ReplyTimeoutMs = 250
	}
}

// Validate checks the configuration for values the firmware cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Mode != ModeSabertooth && c.Mode != ModeESC {
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.HeartbeatIntervalMs >= c.LivenessTimeoutMs {
		errs = append(errs, fmt.Errorf("heartbeat interval %dms must be below liveness timeout %dms",
			c.HeartbeatIntervalMs, c.LivenessTimeoutMs))
	}
	if c.Joystick.Deadzone < 0 || c.Joystick.Saturation > 1 || c.Joystick.Deadzone >= c.Joystick.Saturation {
		errs = append(errs, fmt.Errorf("joystick deadzone %v / saturation %v out of order",
			c.Joystick.Deadzone, c.Joystick.Saturation))
	}
	for _, addr := range c.Sabertooth.Addresses {
		if addr < 128 || addr > 135 {
			errs = append(errs, fmt.Errorf("sabertooth address %d outside 128-135", addr))
		}
	}
	if c.ESC.MinPulseUs >= c.ESC.MaxPulseUs || c.ESC.MaxPulseUs >= c.ESC.PeriodUs {
		errs = append(errs, fmt.Errorf("esc timing %d/%d/%dus out of order",
			c.ESC.MinPulseUs, c.ESC.MaxPulseUs, c.ESC.PeriodUs))
	}
	return errors.Join(errs...)
}

// Default returns the configuration used when none is supplied
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}
