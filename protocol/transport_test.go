package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceSource feeds a fixed byte slice
type sliceSource struct {
	data []byte
}

func (s *sliceSource) Dequeue() (byte, bool) {
	if len(s.data) == 0 {
		return 0, false
	}
	b := s.data[0]
	s.data = s.data[1:]
	return b, true
}

// recorder collects handler callbacks in order
type recorder struct {
	events []interface{}
}

func (r *recorder) FrameDecoded(msg RemoteMessage) { r.events = append(r.events, msg) }
func (r *recorder) FrameRejected(err FrameError)   { r.events = append(r.events, err) }
func (r *recorder) FrameOverrun()                  { r.events = append(r.events, FrameOverrun{}) }

func TestFrameBufferComplete(t *testing.T) {
	fb := NewFrameBuffer(make([]byte, 8))
	for _, b := range []byte{0x02, 0x11} {
		frame, status := fb.Push(b)
		require.Equal(t, FramePending, status)
		require.Nil(t, frame)
	}
	require.Equal(t, 2, fb.Buffered())

	frame, status := fb.Push(FrameTerminator)
	require.Equal(t, FrameComplete, status)
	require.Equal(t, []byte{0x02, 0x11, 0x00}, frame)
	require.Equal(t, 0, fb.Buffered())
}

func TestFrameBufferOverrunResync(t *testing.T) {
	fb := NewFrameBuffer(make([]byte, 4))
	overruns := 0
	for i := 0; i < 50; i++ {
		_, status := fb.Push(0x55)
		if status == FrameOverflow {
			overruns++
		}
		require.NotEqual(t, FrameComplete, status)
	}
	require.Equal(t, 1, overruns)

	// The terminator ending the corrupted span is swallowed
	_, status := fb.Push(FrameTerminator)
	require.Equal(t, FramePending, status)

	frame, status := fb.Push(FrameTerminator)
	require.Equal(t, FrameComplete, status)
	require.Equal(t, []byte{FrameTerminator}, frame)
}

func TestFrameBufferAbort(t *testing.T) {
	fb := NewFrameBuffer(make([]byte, 8))
	fb.Push(0x01)
	require.True(t, fb.Abort())
	require.False(t, fb.Abort())

	_, status := fb.Push(0x01)
	require.Equal(t, FramePending, status)
	_, status = fb.Push(FrameTerminator)
	require.Equal(t, FramePending, status)
	require.Equal(t, 0, fb.Buffered())
}

func TestReassemblerDecodesStream(t *testing.T) {
	cmd := Command{ActuatorCommand{0.5, -0.5, 0, 1}}
	var stream []byte
	stream = append(stream, encode(t, cmd)...)
	stream = append(stream, encode(t, Heartbeat{})...)

	bad := encode(t, Heartbeat{})
	bad[1] ^= 0x02
	stream = append(stream, bad...)

	r := NewReassembler()
	rec := &recorder{}
	r.Receive(&sliceSource{data: stream}, rec)

	require.Len(t, rec.events, 3)
	require.Equal(t, cmd, rec.events[0])
	require.Equal(t, Heartbeat{}, rec.events[1])
	fe, ok := rec.events[2].(FrameError)
	require.True(t, ok)
	require.Equal(t, KindChecksumMismatch, fe.Kind)
}

func TestReassemblerOverrunRecovery(t *testing.T) {
	var stream []byte
	for i := 0; i < 3*RemoteFrameMax; i++ {
		stream = append(stream, 0x7F)
	}
	stream = append(stream, FrameTerminator)
	cmd := Command{ActuatorCommand{ForwardLeft: 0.25, Vertical: -1}}
	stream = append(stream, encode(t, cmd)...)

	r := NewReassembler()
	rec := &recorder{}
	r.Receive(&sliceSource{data: stream}, rec)

	require.Equal(t, []interface{}{FrameOverrun{}, cmd}, rec.events)
}

func TestReassemblerPartialFrameAcrossCalls(t *testing.T) {
	frame := encode(t, Heartbeat{})
	r := NewReassembler()
	rec := &recorder{}

	r.Receive(&sliceSource{data: frame[:2]}, rec)
	require.Empty(t, rec.events)

	r.Receive(&sliceSource{data: frame[2:]}, rec)
	require.Equal(t, []interface{}{Heartbeat{}}, rec.events)
}

func TestReassemblerAbort(t *testing.T) {
	frame := encode(t, Heartbeat{})
	r := NewReassembler()
	rec := &recorder{}

	r.Receive(&sliceSource{data: frame[:2]}, rec)
	r.Abort(rec)
	r.Abort(rec)
	r.Receive(&sliceSource{data: frame[2:]}, rec)
	r.Receive(&sliceSource{data: frame}, rec)

	require.Equal(t, []interface{}{FrameOverrun{}, Heartbeat{}}, rec.events)
}
