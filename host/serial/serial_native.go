//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// LinkPort is the vehicle link over a tarm/serial port, 8N1 with no flow control
type LinkPort struct {
	port   *serial.Port
	device string
}

// Open opens the vehicle link port
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Device == "" {
		return nil, errors.New("no serial device given")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &LinkPort{port: port, device: cfg.Device}, nil
}

// Read returns link bytes. With a read timeout set, an idle line returns
// (0, nil) or io.EOF depending on the platform.
func (p *LinkPort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write sends whole frames; the port never splits a write
func (p *LinkPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *LinkPort) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Flush discards buffered input and output
func (p *LinkPort) Flush() error {
	return p.port.Flush()
}

// Device returns the path the port was opened with
func (p *LinkPort) Device() string {
	return p.device
}
