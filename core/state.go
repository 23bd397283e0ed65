package core

import "thrustctl/protocol"

// DefaultLivenessTimeout is how long a remote command stays authoritative
// without a Command or Heartbeat, in milliseconds
const DefaultLivenessTimeout = 500

// CommandState merges remote commands and the local joystick into the
// command that drives the actuators. Main loop only.
type CommandState struct {
	clock   Clock
	timeout uint32

	active    protocol.ActuatorCommand
	hasActive bool
	lastSeen  uint32

	joystick protocol.ActuatorCommand
}

// NewCommandState creates a CommandState with no remote command. A zero
// timeout selects DefaultLivenessTimeout; a nil clock selects GetTime.
func NewCommandState(clock Clock, timeout uint32) *CommandState {
	if clock == nil {
		clock = GetTime
	}
	if timeout == 0 {
		timeout = DefaultLivenessTimeout
	}
	return &CommandState{clock: clock, timeout: timeout}
}

// UpdateRemote applies a decoded remote message
func (s *CommandState) UpdateRemote(msg protocol.RemoteMessage) {
	switch m := msg.(type) {
	case protocol.Command:
		s.active = m.ActuatorCommand.Clamp()
		s.hasActive = true
		s.lastSeen = s.clock()
	case protocol.Heartbeat:
		s.lastSeen = s.clock()
	}
}

// UpdateJoystick records the latest local sample
func (s *CommandState) UpdateJoystick(sample protocol.ActuatorCommand) {
	s.joystick = sample.Clamp()
}

// Compute returns the command to drive. A fresh remote command wins; once
// it goes stale it is cleared, so control stays local until a new Command
// arrives even if heartbeats resume.
func (s *CommandState) Compute() protocol.ActuatorCommand {
	if s.hasActive {
		if !Expired(s.clock(), s.lastSeen, s.timeout) {
			return s.active
		}
		s.active = protocol.ActuatorCommand{}
		s.hasActive = false
	}
	return s.joystick
}

// RemoteActive reports whether a remote command is currently held
func (s *CommandState) RemoteActive() bool {
	return s.hasActive
}

// Timeout returns the liveness timeout in milliseconds
func (s *CommandState) Timeout() uint32 {
	return s.timeout
}
