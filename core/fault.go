package core

import (
	"io"
	"time"

	"thrustctl/protocol"
)

// FaultRepeatInterval is how often a halted device repeats its fault
const FaultRepeatInterval = 500 * time.Millisecond

// FaultReporter announces an unrecoverable fault on the link. It has its
// own encoder and buffer so it works even if the Session is mid-send.
type FaultReporter struct {
	link    io.ByteWriter
	encoder protocol.Encoder
	frame   [protocol.DeviceFrameMax]byte

	// Called between repeats in Halt; defaults to sleeping FaultRepeatInterval
	Pause func()
}

// NewFaultReporter creates a FaultReporter writing to link
func NewFaultReporter(link io.ByteWriter) *FaultReporter {
	return &FaultReporter{link: link}
}

// Report sends FaultNotice followed by the reason as LogText
func (f *FaultReporter) Report(reason string) error {
	if err := f.send(protocol.FaultNotice{}); err != nil {
		return err
	}
	return f.send(protocol.LogText{Text: truncateText(reason, LogTextMax)})
}

// Halt reports the fault forever. It never returns; the actuators are left
// to the caller to stop first.
func (f *FaultReporter) Halt(reason string) {
	pause := f.Pause
	if pause == nil {
		pause = func() { time.Sleep(FaultRepeatInterval) }
	}
	for {
		f.Report(reason)
		pause()
	}
}

func (f *FaultReporter) send(msg protocol.DeviceMessage) error {
	frame, err := f.encoder.Encode(msg, f.frame[:])
	if err != nil {
		return err
	}
	return writeFrame(f.link, frame)
}

// FaultReason describes a recovered panic value
func FaultReason(r interface{}) string {
	switch v := r.(type) {
	case nil:
		return "fault"
	case string:
		return "panic: " + v
	case error:
		return "panic: " + v.Error()
	case interface{ String() string }:
		return "panic: " + v.String()
	default:
		return "panic"
	}
}
