package core

import (
	"sync/atomic"

	"thrustctl/protocol"
)

// RxRegister is the receive side of a UART: the bytes the hardware has
// latched so far
type RxRegister interface {
	Buffered() int
	ReadByte() (byte, error)
}

// Gap word layout: bit 63 set while a gap is pending, bits 32-62 hold
// last-first, bits 0-31 hold first. Both are queue stream positions.
const (
	gapPending  = uint64(1) << 63
	gapSpanMask = 1<<31 - 1
)

// LinkBridge moves received link bytes into the byte queue. It is the
// producer side; Service runs in interrupt (or receive goroutine) context.
type LinkBridge struct {
	rx       RxRegister
	producer *protocol.QueueProducer

	dropped atomic.Uint32

	// Positions of the first and last drop the consumer has not reached.
	// Drops in between are absorbed by the abort at the first one unless a
	// terminator separates them, in which case that frame fails its checksum.
	gap atomic.Uint64
}

// NewLinkBridge creates a bridge feeding producer from rx
func NewLinkBridge(rx RxRegister, producer *protocol.QueueProducer) *LinkBridge {
	return &LinkBridge{rx: rx, producer: producer}
}

// Service drains every buffered byte into the queue. A byte that does not
// fit is dropped and its stream position recorded. Never blocks.
func (b *LinkBridge) Service() {
	for b.rx.Buffered() > 0 {
		c, err := b.rx.ReadByte()
		if err != nil {
			return
		}
		if b.producer.Enqueue(c) != nil {
			b.dropped.Add(1)
			b.markGap(b.producer.Pos())
		}
	}
}

// Dropped returns the total number of bytes dropped since boot
func (b *LinkBridge) Dropped() uint32 {
	return b.dropped.Load()
}

// Input wraps the consumer end of the bridged queue so the reassembler
// sees where bytes were dropped
func (b *LinkBridge) Input(consumer *protocol.QueueConsumer) *LinkInput {
	return &LinkInput{bridge: b, consumer: consumer}
}

// markGap records a drop at pos. Producer only.
func (b *LinkBridge) markGap(pos uint32) {
	for {
		old := b.gap.Load()
		next := gapPending | uint64(pos)
		if old&gapPending != 0 {
			first := uint32(old)
			next = gapPending | uint64(pos-first)<<32 | uint64(first)
		}
		if b.gap.CompareAndSwap(old, next) {
			return
		}
	}
}

// takeGap reports whether a drop sits right before pos and consumes it.
// Consumer only.
func (b *LinkBridge) takeGap(pos uint32) bool {
	for {
		old := b.gap.Load()
		if old&gapPending == 0 {
			return false
		}
		first := uint32(old)
		if int32(pos-first) < 0 {
			return false
		}

		var next uint64
		last := first + uint32(old>>32)&gapSpanMask
		if int32(pos-last) < 0 {
			next = gapPending | uint64(last)
		}
		if b.gap.CompareAndSwap(old, next) {
			return true
		}
	}
}

// LinkInput is the consumer end of a bridged queue. It implements
// protocol.GapSource. Main loop only.
type LinkInput struct {
	bridge   *LinkBridge
	consumer *protocol.QueueConsumer
}

// Dequeue returns the next received byte
func (in *LinkInput) Dequeue() (byte, bool) {
	return in.consumer.Dequeue()
}

// GapBefore reports whether bytes were dropped just before the next byte
func (in *LinkInput) GapBefore() bool {
	return in.bridge.takeGap(in.consumer.Pos())
}
