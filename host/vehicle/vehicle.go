// Package vehicle is the host's handle on a connected vehicle.
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"thrustctl/config"
	"thrustctl/host/serial"
	"thrustctl/protocol"
)

// ErrNotConnected is returned by operations on a closed Vehicle
var ErrNotConnected = errors.New("not connected to vehicle")

// LinkStats counts inbound link problems seen by the host
type LinkStats struct {
	DecodeErrors uint32
	Overruns     uint32
}

// Vehicle represents a connection to the vehicle firmware
type Vehicle struct {
	cfg *config.Config

	// Link layer
	link *protocol.HostLink

	// Serial port
	port io.ReadWriteCloser

	// Heartbeat loop
	keepAliveCancel context.CancelFunc
	keepAliveDone   chan struct{}

	mu        sync.Mutex
	connected bool
}

// New creates a Vehicle (not yet connected). A nil cfg uses the defaults.
func New(cfg *config.Config) *Vehicle {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Vehicle{cfg: cfg}
}

// Connect opens device with the configured link settings
func (v *Vehicle) Connect(device string) error {
	return v.ConnectWithConfig(serial.FromVehicleConfig(device, v.cfg))
}

// ConnectWithConfig connects with a custom serial config
func (v *Vehicle) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	// Discard anything the device sent before we were listening
	if err := port.Flush(); err != nil {
		glog.Warningf("flush %s: %v", cfg.Device, err)
	}
	v.Attach(port)
	glog.Infof("connected to %s at %d baud", cfg.Device, cfg.Baud)
	return nil
}

// Attach runs the link over an already open port
func (v *Vehicle) Attach(port io.ReadWriteCloser) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.port = port
	v.link = protocol.NewHostLink(port)
	v.connected = true
}

// WaitReady blocks until the firmware announces itself
func (v *Vehicle) WaitReady(ctx context.Context) error {
	link, err := v.currentLink()
	if err != nil {
		return err
	}
	if err := link.WaitReady(ctx); err != nil {
		return err
	}
	glog.Info("vehicle ready")
	return nil
}

// Drive sends cmd and waits for the firmware to accept it
func (v *Vehicle) Drive(ctx context.Context, cmd protocol.ActuatorCommand) error {
	link, err := v.currentLink()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, v.replyTimeout())
	defer cancel()
	if err := link.SendCommand(ctx, cmd); err != nil {
		return fmt.Errorf("drive: %w", err)
	}
	return nil
}

// Stop commands all thrusters to zero
func (v *Vehicle) Stop(ctx context.Context) error {
	return v.Drive(ctx, protocol.ActuatorCommand{})
}

// Heartbeat refreshes the firmware's liveness timer once
func (v *Vehicle) Heartbeat(ctx context.Context) error {
	link, err := v.currentLink()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, v.replyTimeout())
	defer cancel()
	return link.SendHeartbeat(ctx)
}

// StartKeepAlive sends heartbeats in the background at the configured
// interval, keeping the last remote command in force. Stopped by
// StopKeepAlive or Close.
func (v *Vehicle) StartKeepAlive() error {
	link, err := v.currentLink()
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keepAliveCancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	v.keepAliveCancel = cancel
	v.keepAliveDone = done

	interval := time.Duration(v.cfg.HeartbeatIntervalMs) * time.Millisecond
	go func() {
		defer close(done)
		link.KeepAlive(ctx, interval)
	}()
	return nil
}

// StopKeepAlive stops the heartbeat loop; the firmware falls back to the
// joystick once its liveness timeout expires
func (v *Vehicle) StopKeepAlive() {
	v.mu.Lock()
	cancel, done := v.keepAliveCancel, v.keepAliveDone
	v.keepAliveCancel, v.keepAliveDone = nil, nil
	v.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// KeepAliveRunning reports whether heartbeats are being sent
func (v *Vehicle) KeepAliveRunning() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.keepAliveCancel != nil
}

// Messages returns unsolicited device messages (Ready, SensorStream,
// LogText, FaultNotice)
func (v *Vehicle) Messages() <-chan protocol.DeviceMessage {
	link, err := v.currentLink()
	if err != nil {
		return nil
	}
	return link.Messages()
}

// Stats returns the inbound link counters
func (v *Vehicle) Stats() LinkStats {
	link, err := v.currentLink()
	if err != nil {
		return LinkStats{}
	}
	return LinkStats{DecodeErrors: link.DecodeErrors(), Overruns: link.Overruns()}
}

// Close stops the keepalive and closes the connection
func (v *Vehicle) Close() error {
	v.StopKeepAlive()

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.connected {
		return nil
	}
	v.connected = false
	return v.link.Close()
}

// IsConnected returns whether the vehicle is connected
func (v *Vehicle) IsConnected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connected
}

// Config returns the configuration in use
func (v *Vehicle) Config() *config.Config {
	return v.cfg
}

func (v *Vehicle) currentLink() (*protocol.HostLink, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.connected {
		return nil, ErrNotConnected
	}
	return v.link, nil
}

func (v *Vehicle) replyTimeout() time.Duration {
	return time.Duration(v.cfg.Host.ReplyTimeoutMs) * time.Millisecond
}
