//go:build rp2040

package main

import (
	"machine"
	"time"

	"thrustctl/config"
	"thrustctl/core"
	"thrustctl/drivers/sabertooth"
	"thrustctl/protocol"
	"thrustctl/targets/pio"
)

var (
	// Host link
	link = machine.UART0

	// Sabertooth packet serial, TX only
	motorUART = machine.UART1

	queue  protocol.ByteQueue
	bridge *core.LinkBridge

	// Reader restarts after a recovered panic
	rxRestarts uint32
)

func main() {
	cfg := config.Default()
	UpdateSystemTime()

	link.Configure(machine.UARTConfig{
		BaudRate: cfg.Link.Baud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	fault := core.NewFaultReporter(link)

	producer, consumer := queue.Split()
	core.Critical(func() {
		bridge = core.NewLinkBridge(link, producer)
	})

	sink, err := newSink(cfg)
	if err != nil {
		fault.Halt("actuators: " + err.Error())
	}

	// From here on a panic stops the thrusters and reports forever
	defer func() {
		if r := recover(); r != nil {
			core.DriveAll(sink, protocol.ActuatorCommand{})
			fault.Halt(core.FaultReason(r))
		}
	}()

	axes, err := newStickAxes()
	if err != nil {
		fault.Halt("joystick: " + err.Error())
	}
	joystick := &core.AnalogJoystick{
		Axes:       axes,
		Deadzone:   cfg.Joystick.Deadzone,
		Saturation: cfg.Joystick.Saturation,
	}

	sessionCfg := core.SessionConfig{
		Input:           bridge.Input(consumer),
		Link:            link,
		Joystick:        joystick,
		Sink:            sink,
		LivenessTimeout: cfg.LivenessTimeoutMs,
		SensorInterval:  cfg.SensorIntervalMs,
	}
	imu, imuErr := newIMUSensors(machine.I2C0)
	if imuErr == nil {
		sessionCfg.Sensors = imu
	}

	session := core.NewSession(sessionCfg)
	core.SetDebugWriter(session.Log)

	go rxLoop()

	session.Boot()
	if imuErr != nil {
		session.Log("imu disabled: " + imuErr.Error())
	}

	for {
		UpdateSystemTime()
		session.Tick()

		// Yield to the receive goroutine
		time.Sleep(100 * time.Microsecond)
	}
}

// newSink brings up the actuator output selected by the mode strap
func newSink(cfg *config.Config) (core.ActuatorSink, error) {
	if GetMode(cfg) == config.ModeESC {
		return pio.NewESCBank(cfg.ESC.Pins, pio.PulseTiming{
			MinUs:    cfg.ESC.MinPulseUs,
			MaxUs:    cfg.ESC.MaxPulseUs,
			PeriodUs: cfg.ESC.PeriodUs,
		})
	}

	err := motorUART.Configure(machine.UARTConfig{
		BaudRate: cfg.Sabertooth.Baud,
		TX:       machine.UART1_TX_PIN,
		RX:       machine.UART1_RX_PIN,
	})
	if err != nil {
		return nil, err
	}

	// Wait for the motor controllers to power on
	time.Sleep(sabertooth.PowerUpDelay)
	st := sabertooth.New(motorUART, cfg.Sabertooth.Addresses)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// rxLoop drains the UART's receive buffer into the byte queue. TinyGo's
// machine package owns the UART interrupt, so this goroutine is the
// producer side.
func rxLoop() {
	// Recover from panics to prevent a firmware crash
	defer func() {
		if r := recover(); r != nil {
			rxRestarts++
			// Restart the reader loop
			time.Sleep(100 * time.Millisecond)
			go rxLoop()
		}
	}()

	for {
		bridge.Service()
		// Yield to avoid a busy loop
		time.Sleep(50 * time.Microsecond)
	}
}
