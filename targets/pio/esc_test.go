package pio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var standard = PulseTiming{MinUs: 1000, MaxUs: 2000, PeriodUs: 20000}

func TestPulseWidth(t *testing.T) {
	require.Equal(t, uint32(1500), standard.PulseWidth(0))
	require.Equal(t, uint32(2000), standard.PulseWidth(127))
	require.Equal(t, uint32(1000), standard.PulseWidth(-127))
	require.Equal(t, uint32(1000), standard.PulseWidth(-128))
	require.Equal(t, uint32(1748), standard.PulseWidth(63))
	require.Equal(t, uint32(1252), standard.PulseWidth(-63))
}

func TestPulseWidthMonotonic(t *testing.T) {
	prev := standard.PulseWidth(-127)
	for s := -126; s <= 127; s++ {
		w := standard.PulseWidth(int8(s))
		require.GreaterOrEqual(t, w, prev)
		require.True(t, w >= standard.MinUs && w <= standard.MaxUs)
		prev = w
	}
}

func TestWordCoversPeriod(t *testing.T) {
	for _, s := range []int8{-127, -1, 0, 1, 127} {
		word := standard.Word(s)
		high := word&0xFFFF + highOverhead
		low := word>>16 + lowOverhead
		require.Equal(t, standard.PulseWidth(s), high)
		require.Equal(t, standard.PeriodUs, high+low)
	}
}

// fakeFIFO is a transmit FIFO drained one word per output period
type fakeFIFO struct {
	queued []uint32
	clears int
}

func (f *fakeFIFO) IsTxFIFOEmpty() bool { return len(f.queued) == 0 }
func (f *fakeFIFO) ClearFIFOs()         { f.queued = nil; f.clears++ }
func (f *fakeFIFO) TxPut(w uint32)      { f.queued = append(f.queued, w) }

// period pulls the next word the way the state machine does
func (f *fakeFIFO) period() {
	if len(f.queued) > 0 {
		f.queued = f.queued[1:]
	}
}

func TestFeedLatestKeepsOneWordQueued(t *testing.T) {
	fifo := &fakeFIFO{}
	neutral := standard.Word(0)
	last := neutral
	fifo.TxPut(neutral)

	// Ticks far outnumber periods; the queue never grows past one word
	for tick := 0; tick < 50; tick++ {
		feedLatest(fifo, &last, neutral)
		require.LessOrEqual(t, len(fifo.queued), 1)
	}
	fifo.period()
	feedLatest(fifo, &last, neutral)
	require.Equal(t, []uint32{neutral}, fifo.queued)
	require.Zero(t, fifo.clears)
}

func TestFeedLatestNewSpeedReplacesQueue(t *testing.T) {
	fifo := &fakeFIFO{}
	last := standard.Word(0)
	fifo.TxPut(last)

	full := standard.Word(127)
	feedLatest(fifo, &last, full)
	require.Equal(t, []uint32{full}, fifo.queued)
	require.Equal(t, full, last)

	// Failsafe back to neutral overtakes the queued full-speed period
	feedLatest(fifo, &last, standard.Word(0))
	require.Equal(t, []uint32{standard.Word(0)}, fifo.queued)
	require.Equal(t, 2, fifo.clears)
}
