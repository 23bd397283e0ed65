package protocol

import "sync/atomic"

// scratchCap leaves room for the checksum after the largest payload
const scratchCap = DevicePayloadMax + ChecksumSize

// ScratchOutput accumulates outgoing payload bytes in a fixed-size scratch
// buffer. Writes past the end are dropped and latch Overflowed.
type ScratchOutput struct {
	buf        [scratchCap]byte
	pos        int
	overflowed bool
}

// NewScratchOutput creates a new ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{pos: 0}
}

func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
	if n < len(data) {
		s.overflowed = true
	}
}

// OutputString writes the bytes of str without converting it to a slice
func (s *ScratchOutput) OutputString(str string) {
	n := copy(s.buf[s.pos:], str)
	s.pos += n
	if n < len(str) {
		s.overflowed = true
	}
}

func (s *ScratchOutput) CurPosition() int {
	return s.pos
}

// Overflowed reports whether any write since the last Reset was truncated
func (s *ScratchOutput) Overflowed() bool {
	return s.overflowed
}

// Result returns the accumulated output data
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Reset clears the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
	s.overflowed = false
}

// ByteQueue is a fixed-capacity single-producer/single-consumer ring of
// bytes. The producer only writes tail and the consumer only writes head,
// so the two ends never need a lock. Both counters run freely and wrap;
// their difference is the fill level.
type ByteQueue struct {
	buf  [QueueSize]byte
	head atomic.Uint32 // written by the consumer
	tail atomic.Uint32 // written by the producer
}

// QueueProducer is the enqueue half of a ByteQueue
type QueueProducer struct {
	q *ByteQueue
}

// QueueConsumer is the dequeue half of a ByteQueue
type QueueConsumer struct {
	q *ByteQueue
}

// Split hands out the two ends of the queue. Each must be used from a
// single context only.
func (q *ByteQueue) Split() (*QueueProducer, *QueueConsumer) {
	return &QueueProducer{q: q}, &QueueConsumer{q: q}
}

// Enqueue appends b. It never blocks; a full queue returns ErrBufferExhausted
// and leaves the queue unchanged.
func (q *ByteQueue) Enqueue(b byte) error {
	tail := q.tail.Load()
	if tail-q.head.Load() >= QueueSize {
		return ErrBufferExhausted
	}
	q.buf[tail&(QueueSize-1)] = b
	// Publish the byte before moving tail
	q.tail.Store(tail + 1)
	return nil
}

// Dequeue removes the oldest byte, or returns false when empty
func (q *ByteQueue) Dequeue() (byte, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return 0, false
	}
	b := q.buf[head&(QueueSize-1)]
	q.head.Store(head + 1)
	return b, true
}

// Len returns the number of queued bytes
func (q *ByteQueue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// IsEmpty returns true if the queue holds no bytes
func (q *ByteQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Enqueue appends b to the queue
func (p *QueueProducer) Enqueue(b byte) error {
	return p.q.Enqueue(b)
}

// Pos returns the stream position the next enqueued byte will take
func (p *QueueProducer) Pos() uint32 {
	return p.q.tail.Load()
}

// Dequeue removes the oldest byte from the queue
func (c *QueueConsumer) Dequeue() (byte, bool) {
	return c.q.Dequeue()
}

// Len returns the number of queued bytes
func (c *QueueConsumer) Len() int {
	return c.q.Len()
}

// Pos returns the stream position of the next byte Dequeue returns
func (c *QueueConsumer) Pos() uint32 {
	return c.q.head.Load()
}
