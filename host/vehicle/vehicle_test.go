package vehicle

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thrustctl/config"
	"thrustctl/core"
	"thrustctl/protocol"
)

// connWriter feeds the session's byte writes into the pipe
type connWriter struct {
	conn net.Conn
	b    [1]byte
}

func (w *connWriter) WriteByte(c byte) error {
	w.b[0] = c
	_, err := w.conn.Write(w.b[:])
	return err
}

// speedSink records the latest speed per channel
type speedSink struct {
	mu     sync.Mutex
	speeds [core.ChannelCount]int8
}

func (s *speedSink) Drive(channel uint8, speed int8) error {
	s.mu.Lock()
	s.speeds[channel] = speed
	s.mu.Unlock()
	return nil
}

func (s *speedSink) get() [core.ChannelCount]int8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speeds
}

type staticSensors struct{}

func (staticSensors) ReadSensors(buf []byte) (int, error) {
	return copy(buf, []byte{0xAB, 0xCD}), nil
}

// simulatedVehicle runs the firmware session on the far end of a pipe
type simulatedVehicle struct {
	sink speedSink
	stop chan struct{}
	done sync.WaitGroup
}

func startSimulatedVehicle(t *testing.T, conn net.Conn, cfg *config.Config, joystick protocol.ActuatorCommand) *simulatedVehicle {
	sim := &simulatedVehicle{stop: make(chan struct{})}

	var queue protocol.ByteQueue
	producer, consumer := queue.Split()
	start := time.Now()

	session := core.NewSession(core.SessionConfig{
		Input:           consumer,
		Link:            &connWriter{conn: conn},
		Joystick:        core.SamplerFunc(func() protocol.ActuatorCommand { return joystick }),
		Sink:            &sim.sink,
		Sensors:         staticSensors{},
		Clock:           func() uint32 { return uint32(time.Since(start).Milliseconds()) },
		LivenessTimeout: cfg.LivenessTimeoutMs,
		SensorInterval:  cfg.SensorIntervalMs,
	})

	// Receive side: what the UART interrupt would do
	sim.done.Add(2)
	go func() {
		defer sim.done.Done()
		buf := make([]byte, 64)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			for _, b := range buf[:n] {
				for producer.Enqueue(b) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}
	}()

	// Main loop
	go func() {
		defer sim.done.Done()
		session.Boot()
		for {
			select {
			case <-sim.stop:
				return
			default:
			}
			session.Tick()
			time.Sleep(time.Millisecond)
		}
	}()

	t.Cleanup(func() {
		close(sim.stop)
		conn.Close()
		sim.done.Wait()
	})
	return sim
}

func connectSimulated(t *testing.T, cfg *config.Config, joystick protocol.ActuatorCommand) (*Vehicle, *simulatedVehicle) {
	hostEnd, deviceEnd := net.Pipe()
	v := New(cfg)
	v.Attach(hostEnd)
	sim := startSimulatedVehicle(t, deviceEnd, cfg, joystick)
	t.Cleanup(func() { v.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, v.WaitReady(ctx))
	return v, sim
}

func TestVehicleDrive(t *testing.T) {
	v, sim := connectSimulated(t, config.Default(), protocol.ActuatorCommand{})
	ctx := context.Background()

	require.NoError(t, v.Drive(ctx, protocol.ActuatorCommand{ForwardLeft: 0.5, ForwardRight: -0.5, Vertical: 1}))
	require.Eventually(t, func() bool {
		return sim.sink.get() == [core.ChannelCount]int8{63, -63, 0, 127}
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, v.Stop(ctx))
	require.Eventually(t, func() bool {
		return sim.sink.get() == [core.ChannelCount]int8{}
	}, time.Second, 5*time.Millisecond)
}

func TestVehicleLivenessFallback(t *testing.T) {
	cfg := config.Default()
	cfg.LivenessTimeoutMs = 150
	cfg.HeartbeatIntervalMs = 40
	v, sim := connectSimulated(t, cfg, protocol.ActuatorCommand{Strafe: -1})
	ctx := context.Background()

	require.NoError(t, v.Drive(ctx, protocol.ActuatorCommand{Vertical: 1}))
	require.NoError(t, v.StartKeepAlive())
	require.True(t, v.KeepAliveRunning())

	// Heartbeats hold the remote command well past the timeout
	time.Sleep(400 * time.Millisecond)
	require.Equal(t, [core.ChannelCount]int8{0, 0, 0, 127}, sim.sink.get())

	v.StopKeepAlive()
	require.False(t, v.KeepAliveRunning())
	require.Eventually(t, func() bool {
		return sim.sink.get() == [core.ChannelCount]int8{0, 0, -127, 0}
	}, time.Second, 5*time.Millisecond)
}

func TestVehicleSensorStream(t *testing.T) {
	cfg := config.Default()
	cfg.SensorIntervalMs = 20
	v, _ := connectSimulated(t, cfg, protocol.ActuatorCommand{})

	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-v.Messages():
			if s, ok := msg.(protocol.SensorStream); ok {
				require.Equal(t, []byte{0xAB, 0xCD}, s.Data)
				return
			}
		case <-timeout:
			t.Fatal("no sensor stream received")
		}
	}
}

func TestVehicleNotConnected(t *testing.T) {
	v := New(nil)
	ctx := context.Background()
	require.ErrorIs(t, v.Drive(ctx, protocol.ActuatorCommand{}), ErrNotConnected)
	require.ErrorIs(t, v.Heartbeat(ctx), ErrNotConnected)
	require.ErrorIs(t, v.WaitReady(ctx), ErrNotConnected)
	require.ErrorIs(t, v.StartKeepAlive(), ErrNotConnected)
	require.Nil(t, v.Messages())
	require.Equal(t, LinkStats{}, v.Stats())
	require.NoError(t, v.Close())
	require.False(t, v.IsConnected())
}

func TestVehicleConnectBadDevice(t *testing.T) {
	v := New(nil)
	require.Error(t, v.Connect(""))
	require.False(t, v.IsConnected())
}
