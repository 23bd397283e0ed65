package core

import (
	"io"

	"thrustctl/protocol"
)

// DefaultSensorInterval is the SensorStream period in milliseconds
const DefaultSensorInterval = 100

// SensorSource fills buf with one sensor sample and returns its length
type SensorSource interface {
	ReadSensors(buf []byte) (int, error)
}

// SessionConfig wires a Session to its hardware. Input, Link and Sink are
// required; the rest is optional.
type SessionConfig struct {
	// Consumer end of the receive queue. A LinkBridge's Input also reports
	// dropped bytes, which abort the frame they fell in.
	Input protocol.ByteSource

	// Transmit side of the link
	Link io.ByteWriter

	Joystick Sampler
	Sink     ActuatorSink
	Sensors  SensorSource

	// Defaults to GetTime
	Clock Clock

	// Milliseconds; zero selects the defaults
	LivenessTimeout uint32
	SensorInterval  uint32
}

// SessionStats counts link and actuator events since boot
type SessionStats struct {
	Accepted     uint32
	Rejected     uint32
	Overruns     uint32
	SendErrors   uint32
	DriveErrors  uint32
	SensorErrors uint32
}

// Session is the vehicle's main loop: it drains received frames, replies to
// each, merges remote and local commands and drives the actuators.
type Session struct {
	cfg   SessionConfig
	state *CommandState
	reasm *protocol.Reassembler

	encoder protocol.Encoder
	frame   [protocol.DeviceFrameMax]byte
	sensors [SensorDataMax]byte

	booted     bool
	lastSensor uint32
	stats      SessionStats
}

// NewSession creates a Session. It emits nothing until Boot.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Clock == nil {
		cfg.Clock = GetTime
	}
	if cfg.SensorInterval == 0 {
		cfg.SensorInterval = DefaultSensorInterval
	}
	return &Session{
		cfg:   cfg,
		state: NewCommandState(cfg.Clock, cfg.LivenessTimeout),
		reasm: protocol.NewReassembler(),
	}
}

// Boot announces the device with Ready. Only the first call sends.
func (s *Session) Boot() {
	if s.booted {
		return
	}
	s.booted = true
	s.lastSensor = s.cfg.Clock()
	s.Send(protocol.Ready{})
}

// Tick runs one main loop iteration. It never blocks except on link
// writes and the actuator sink.
func (s *Session) Tick() {
	s.reasm.Receive(s.cfg.Input, (*sessionHandler)(s))

	if s.cfg.Joystick != nil {
		s.state.UpdateJoystick(s.cfg.Joystick.Sample())
	}

	if s.cfg.Sink != nil {
		if err := DriveAll(s.cfg.Sink, s.state.Compute()); err != nil {
			s.stats.DriveErrors++
			DebugPrintln("actuator: " + err.Error())
		}
	}

	s.streamSensors()
}

// Send frames msg onto the link. A message that cannot be encoded is
// dropped.
func (s *Session) Send(msg protocol.DeviceMessage) {
	frame, err := s.encoder.Encode(msg, s.frame[:])
	if err != nil {
		return
	}
	if err := writeFrame(s.cfg.Link, frame); err != nil {
		s.stats.SendErrors++
	}
}

// Log sends text to the host as LogText, truncated to fit one frame
func (s *Session) Log(text string) {
	s.Send(protocol.LogText{Text: truncateText(text, LogTextMax)})
}

// RemoteActive reports whether the host currently has control
func (s *Session) RemoteActive() bool {
	return s.state.RemoteActive()
}

// Stats returns a snapshot of the event counters
func (s *Session) Stats() SessionStats {
	return s.stats
}

func (s *Session) streamSensors() {
	if s.cfg.Sensors == nil {
		return
	}
	now := s.cfg.Clock()
	if Elapsed(now, s.lastSensor) < s.cfg.SensorInterval {
		return
	}
	s.lastSensor = now

	n, err := s.cfg.Sensors.ReadSensors(s.sensors[:])
	if err != nil {
		s.stats.SensorErrors++
		return
	}
	s.Send(protocol.SensorStream{Data: s.sensors[:n]})
}

// sessionHandler receives reassembler callbacks without exporting them on
// Session
type sessionHandler Session

func (h *sessionHandler) FrameDecoded(msg protocol.RemoteMessage) {
	s := (*Session)(h)
	s.state.UpdateRemote(msg)
	s.stats.Accepted++
	s.Send(protocol.Accepted{})
}

func (h *sessionHandler) FrameRejected(err protocol.FrameError) {
	s := (*Session)(h)
	s.stats.Rejected++
	s.Send(protocol.Rejected{Err: err})
}

func (h *sessionHandler) FrameOverrun() {
	s := (*Session)(h)
	s.stats.Overruns++
	s.Send(protocol.FrameOverrun{})
	DebugPrintln("link overrun #" + utoa(s.stats.Overruns))
}
