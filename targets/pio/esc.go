// Package pio drives RC thruster ESCs from RP2040 PIO state machines. The
// timing math builds everywhere; the hardware side is rp2040 only.
package pio

import "errors"

// PIOClockHz is the state machine clock after division: one cycle per µs
const PIOClockHz = 1000000

// ErrChannel is returned for a channel without an ESC
var ErrChannel = errors.New("esc: no such channel")

// Cycles spent outside the two delay loops, see buildESCProgram
const (
	highOverhead = 2
	lowOverhead  = 5
)

// PulseTiming describes the servo-style signal an ESC expects
type PulseTiming struct {
	MinUs    uint32 // full reverse
	MaxUs    uint32 // full forward
	PeriodUs uint32
}

// PulseWidth maps a signed speed (±127 full scale) onto the pulse range,
// with zero at the midpoint
func (t PulseTiming) PulseWidth(speed int8) uint32 {
	if speed == -128 {
		speed = -127
	}
	mid := int32(t.MinUs+t.MaxUs) / 2
	half := int32(t.MaxUs-t.MinUs) / 2
	return uint32(mid + int32(speed)*half/127)
}

// Word packs one period into the state machine's command word: high loop
// count in the low half, low loop count in the high half
func (t PulseTiming) Word(speed int8) uint32 {
	high := t.PulseWidth(speed)
	low := t.PeriodUs - high
	return (low-lowOverhead)<<16 | (high - highOverhead)
}

// txFIFO is the CPU side of a state machine's transmit FIFO
type txFIFO interface {
	IsTxFIFOEmpty() bool
	ClearFIFOs()
	TxPut(data uint32)
}

// feedLatest keeps at most one period queued behind the one being output.
// A changed word replaces anything queued so it starts after the current
// period; an unchanged word is only topped up once the FIFO drains.
func feedLatest(fifo txFIFO, last *uint32, word uint32) {
	switch {
	case word != *last:
		fifo.ClearFIFOs()
		fifo.TxPut(word)
		*last = word
	case fifo.IsTxFIFOEmpty():
		fifo.TxPut(word)
	}
}
