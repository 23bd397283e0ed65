package protocol

// FrameStatus is the result of pushing one byte into a FrameBuffer
type FrameStatus uint8

const (
	// FramePending means the byte was buffered (or discarded while resyncing)
	FramePending FrameStatus = iota
	// FrameComplete means a terminator arrived and a frame is ready
	FrameComplete
	// FrameOverflow means the buffer overflowed before a terminator
	FrameOverflow
)

// FrameBuffer accumulates bytes into caller-provided fixed storage until a
// terminator arrives. After an overrun it discards input up to and
// including the next terminator, so a corrupted span produces exactly one
// overrun and is never decoded.
type FrameBuffer struct {
	buf        []byte
	n          int
	discarding bool
}

// NewFrameBuffer creates a FrameBuffer over storage. The storage is never
// grown; its length is the largest frame accepted.
func NewFrameBuffer(storage []byte) *FrameBuffer {
	return &FrameBuffer{buf: storage}
}

// Push appends b. On FrameComplete the returned frame (terminator included)
// is valid until the next Push.
func (f *FrameBuffer) Push(b byte) ([]byte, FrameStatus) {
	if f.discarding {
		if b == FrameTerminator {
			f.discarding = false
		}
		return nil, FramePending
	}

	if f.n >= len(f.buf) {
		f.n = 0
		// A terminator arriving right at the overflow point already resyncs
		f.discarding = b != FrameTerminator
		return nil, FrameOverflow
	}

	f.buf[f.n] = b
	f.n++
	if b != FrameTerminator {
		return nil, FramePending
	}

	frame := f.buf[:f.n]
	f.n = 0
	return frame, FrameComplete
}

// Abort drops the partial frame and resyncs on the next terminator. It
// returns true if this started a new overrun, false if one was already
// being discarded.
func (f *FrameBuffer) Abort() bool {
	f.n = 0
	if f.discarding {
		return false
	}
	f.discarding = true
	return true
}

// Buffered returns the number of bytes in the partial frame
func (f *FrameBuffer) Buffered() int {
	return f.n
}

// Reset clears all state
func (f *FrameBuffer) Reset() {
	f.n = 0
	f.discarding = false
}

// ByteSource is the consumer end of a byte hand-off
type ByteSource interface {
	// Dequeue returns the next byte, or false if none is available
	Dequeue() (byte, bool)
}

// GapSource is a ByteSource that knows where bytes were lost before they
// reached it
type GapSource interface {
	ByteSource

	// GapBefore reports, once per gap, that bytes were lost immediately
	// before the next byte Dequeue returns
	GapBefore() bool
}

// ReceiveHandler receives the outcome of every frame boundary
type ReceiveHandler interface {
	// FrameDecoded is called for a frame that verified and decoded
	FrameDecoded(msg RemoteMessage)

	// FrameRejected is called for a frame that failed to decode
	FrameRejected(err FrameError)

	// FrameOverrun is called once per overrun span
	FrameOverrun()
}

// Reassembler turns the received byte stream into decoded remote messages
type Reassembler struct {
	storage [RemoteFrameMax]byte
	frames  FrameBuffer
}

// NewReassembler creates a Reassembler sized for host->device frames
func NewReassembler() *Reassembler {
	r := &Reassembler{}
	r.frames.buf = r.storage[:]
	return r
}

// Receive drains src until it is empty, reporting every frame boundary to
// h. It never blocks. If src is a GapSource, the frame a gap falls in is
// aborted at the gap, so frames received before it still decode.
func (r *Reassembler) Receive(src ByteSource, h ReceiveHandler) {
	gaps, _ := src.(GapSource)
	for {
		if gaps != nil && gaps.GapBefore() {
			r.Abort(h)
		}
		b, ok := src.Dequeue()
		if !ok {
			return
		}

		frame, status := r.frames.Push(b)
		switch status {
		case FrameComplete:
			msg, err := DecodeRemote(frame)
			if err != nil {
				h.FrameRejected(AsFrameError(err))
			} else {
				h.FrameDecoded(msg)
			}
		case FrameOverflow:
			h.FrameOverrun()
		}
	}
}

// Abort discards the partial frame, e.g. after the producer dropped a byte.
// Reports an overrun to h unless one is already being discarded.
func (r *Reassembler) Abort(h ReceiveHandler) {
	if r.frames.Abort() {
		h.FrameOverrun()
	}
}

// Reset clears all state
func (r *Reassembler) Reset() {
	r.frames.Reset()
}
