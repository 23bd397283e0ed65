package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"thrustctl/protocol"
)

func TestFaultReporterReport(t *testing.T) {
	var out bytes.Buffer
	f := NewFaultReporter(&out)
	require.NoError(t, f.Report("thruster 2 stalled"))

	require.Equal(t, []protocol.DeviceMessage{
		protocol.FaultNotice{},
		protocol.LogText{Text: "thruster 2 stalled"},
	}, readDevice(t, &out))
}

func TestFaultReporterWriteError(t *testing.T) {
	f := NewFaultReporter(failingWriter{})
	require.Error(t, f.Report("x"))
}

type haltStop struct{}

func TestFaultReporterHaltRepeats(t *testing.T) {
	var out bytes.Buffer
	f := NewFaultReporter(&out)
	pauses := 0
	f.Pause = func() {
		pauses++
		if pauses == 3 {
			panic(haltStop{})
		}
	}

	func() {
		defer func() {
			require.Equal(t, haltStop{}, recover())
		}()
		f.Halt("watchdog")
	}()

	msgs := readDevice(t, &out)
	require.Len(t, msgs, 6)
	for i := 0; i < len(msgs); i += 2 {
		require.Equal(t, protocol.FaultNotice{}, msgs[i])
		require.Equal(t, protocol.LogText{Text: "watchdog"}, msgs[i+1])
	}
}

type stringer struct{}

func (stringer) String() string { return "custom" }

func TestFaultReason(t *testing.T) {
	require.Equal(t, "fault", FaultReason(nil))
	require.Equal(t, "panic: index out of range", FaultReason("index out of range"))
	require.Equal(t, "panic: boom", FaultReason(errors.New("boom")))
	require.Equal(t, "panic: custom", FaultReason(stringer{}))
	require.Equal(t, "panic", FaultReason(42))
}
