//go:build rp2040

package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildESCProgram creates the pulse program. Each command word is one
// period: X = high loop count, Y = low loop count. The blocking pull
// means the output idles low if the CPU stops refilling the FIFO, which
// ESCs treat as signal loss. Drive keeps the FIFO at most one word deep.
func buildESCProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),           // 0: pull block
		asm.Out(rp2pio.OutDestX, 16).Encode(),    // 1: out x, 16 (high)
		asm.Out(rp2pio.OutDestY, 16).Encode(),    // 2: out y, 16 (low)
		asm.Set(rp2pio.SetDestPins, 1).Encode(),  // 3: set pins, 1
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(), // 4: jmp x--, 4
		asm.Set(rp2pio.SetDestPins, 0).Encode(),  // 5: set pins, 0
		asm.Jmp(6, rp2pio.JmpYNZeroDec).Encode(), // 6: jmp y--, 6
		// .wrap
	}
}

const escPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// escChannel is one ESC output on its own state machine
type escChannel struct {
	pio *rp2pio.PIO
	sm  rp2pio.StateMachine
	pin machine.Pin

	// Last word queued
	word uint32
}

// ESCBank drives up to four ESCs, one per actuator channel
type ESCBank struct {
	timing   PulseTiming
	channels [4]*escChannel
	offsets  [2]int16 // program offset per PIO block, -1 if not loaded
}

// NewESCBank claims a state machine per pin and starts every output at
// the neutral pulse
func NewESCBank(pins [4]uint8, timing PulseTiming) (*ESCBank, error) {
	b := &ESCBank{timing: timing, offsets: [2]int16{-1, -1}}
	for i, pin := range pins {
		ch, err := b.initChannel(machine.Pin(pin))
		if err != nil {
			return nil, err
		}
		b.channels[i] = ch
		ch.word = timing.Word(0)
		ch.sm.TxPut(ch.word)
	}
	return b, nil
}

func (b *ESCBank) initChannel(pin machine.Pin) (*escChannel, error) {
	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return nil, ErrChannel
	}
	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}
	ch := &escChannel{pio: pioHW, sm: pioHW.StateMachine(smNum), pin: pin}

	// Claim the state machine before touching it
	ch.sm.TryClaim()

	// One copy of the program per PIO block
	program := buildESCProgram()
	if b.offsets[pioNum] < 0 {
		offset, err := pioHW.AddProgram(program, escPIOOrigin)
		if err != nil {
			releasePIO(pioNum, smNum)
			return nil, err
		}
		b.offsets[pioNum] = int16(offset)
	}
	offset := uint8(b.offsets[pioNum])

	pin.Configure(machine.PinConfig{Mode: pioHW.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(pin, 1)
	// Shift right so X gets the low half; explicit PULL
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	// 125MHz / 125 = 1µs per instruction
	cfg.SetClkDivIntFrac(125, 0)

	// Initialize state machine FIRST
	ch.sm.Init(offset, cfg)

	// THEN set pin directions (must be after Init!)
	ch.sm.SetPindirsConsecutive(pin, 1, true)
	ch.sm.SetPinsConsecutive(pin, 1, false)
	ch.sm.SetEnabled(true)
	return ch, nil
}

// Drive sets the speed from the next period on. It never blocks; the FIFO
// holds at most one period so a new speed waits for one period at most.
func (b *ESCBank) Drive(channel uint8, speed int8) error {
	if int(channel) >= len(b.channels) || b.channels[channel] == nil {
		return ErrChannel
	}
	ch := b.channels[channel]
	feedLatest(&ch.sm, &ch.word, b.timing.Word(speed))
	return nil
}

// Stop drops queued periods and holds every output at neutral
func (b *ESCBank) Stop() {
	for _, ch := range b.channels {
		if ch == nil {
			continue
		}
		ch.sm.SetEnabled(false)
		ch.sm.ClearFIFOs()
		ch.sm.Restart()
		ch.sm.SetEnabled(true)
		ch.word = b.timing.Word(0)
		ch.sm.TxPut(ch.word)
	}
}
