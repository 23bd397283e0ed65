//go:build !tinygo

package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// ErrLinkOverrun is returned when the device reports a receive overrun
// instead of a decode result
var ErrLinkOverrun = errors.New("device receive buffer overran")

// HostLink handles the link protocol from the host side: it frames remote
// messages to the device and decodes device messages from it
type HostLink struct {
	// Serial I/O
	port io.ReadWriteCloser

	// Outbound framing, guarded by sendMutex
	sendMutex sync.Mutex
	encoder   Encoder
	outBuf    [RemoteFrameMax]byte

	// Inbound reassembly, owned by readLoop
	inStorage [DeviceFrameMax]byte
	frames    *FrameBuffer

	// Accepted / Rejected / FrameOverrun replies
	replyChan chan DeviceMessage

	// Everything else (Ready, SensorStream, LogText, FaultNotice)
	messageChan chan DeviceMessage

	// Signalled on every Ready
	readyChan chan struct{}

	decodeErrors atomic.Uint32
	overruns     atomic.Uint32

	// Stop channel for graceful shutdown
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewHostLink creates a HostLink and starts its reader
func NewHostLink(port io.ReadWriteCloser) *HostLink {
	t := &HostLink{
		port:        port,
		replyChan:   make(chan DeviceMessage, 1),
		messageChan: make(chan DeviceMessage, 16),
		readyChan:   make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
	t.frames = NewFrameBuffer(t.inStorage[:])

	go t.readLoop()

	return t
}

// Send writes msg and waits for the device's accept/reject reply
func (t *HostLink) Send(ctx context.Context, msg RemoteMessage) error {
	t.sendMutex.Lock()
	defer t.sendMutex.Unlock()

	// Drop a late reply left over from an earlier timed-out send
	select {
	case <-t.replyChan:
	default:
	}

	frame, err := t.encoder.Encode(msg, t.outBuf[:])
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := t.writeFrame(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if glog.V(2) {
		glog.Infof("TX %T % x", msg, frame)
	}

	select {
	case reply := <-t.replyChan:
		switch r := reply.(type) {
		case Accepted:
			return nil
		case Rejected:
			return fmt.Errorf("frame rejected: %w", &r.Err)
		default:
			return ErrLinkOverrun
		}
	case <-ctx.Done():
		return fmt.Errorf("reply wait: %w", ctx.Err())
	case <-t.stopChan:
		return fmt.Errorf("link stopped")
	}
}

// SendCommand sends an actuator command
func (t *HostLink) SendCommand(ctx context.Context, cmd ActuatorCommand) error {
	return t.Send(ctx, Command{cmd})
}

// SendHeartbeat refreshes the device's liveness timer
func (t *HostLink) SendHeartbeat(ctx context.Context) error {
	return t.Send(ctx, Heartbeat{})
}

// KeepAlive sends a heartbeat every interval until ctx is done. Failed
// heartbeats are logged, not fatal.
func (t *HostLink) KeepAlive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stopChan:
			return nil
		case <-ticker.C:
			hbCtx, cancel := context.WithTimeout(ctx, interval)
			if err := t.SendHeartbeat(hbCtx); err != nil {
				glog.Warningf("heartbeat failed: %v", err)
			}
			cancel()
		}
	}
}

// WaitReady blocks until the device announces Ready
func (t *HostLink) WaitReady(ctx context.Context) error {
	select {
	case <-t.readyChan:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for ready: %w", ctx.Err())
	case <-t.stopChan:
		return fmt.Errorf("link stopped")
	}
}

// Messages returns unsolicited device messages
func (t *HostLink) Messages() <-chan DeviceMessage {
	return t.messageChan
}

// DecodeErrors returns the number of inbound frames that failed to decode
func (t *HostLink) DecodeErrors() uint32 {
	return t.decodeErrors.Load()
}

// Overruns returns the number of inbound overruns
func (t *HostLink) Overruns() uint32 {
	return t.overruns.Load()
}

func (t *HostLink) writeFrame(frame []byte) error {
	n, err := t.port.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return fmt.Errorf("incomplete write: %d/%d bytes", n, len(frame))
	}
	return nil
}

// readLoop continuously reads from the port and decodes frames
func (t *HostLink) readLoop() {
	defer close(t.doneChan)

	buffer := make([]byte, 256)

	for {
		select {
		case <-t.stopChan:
			return
		default:
		}

		n, err := t.port.Read(buffer)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			glog.V(1).Infof("read error: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		for _, b := range buffer[:n] {
			t.processByte(b)
		}
	}
}

func (t *HostLink) processByte(b byte) {
	frame, status := t.frames.Push(b)
	switch status {
	case FrameOverflow:
		t.overruns.Add(1)
		glog.Warning("inbound frame overran, resyncing")
	case FrameComplete:
		msg, err := DecodeDevice(frame)
		if err != nil {
			t.decodeErrors.Add(1)
			glog.Warningf("dropping inbound frame: %v", err)
			return
		}
		if glog.V(2) {
			glog.Infof("RX %#v", msg)
		}
		t.dispatchMessage(msg)
	}
}

// dispatchMessage routes a message to the appropriate channel
func (t *HostLink) dispatchMessage(msg DeviceMessage) {
	switch m := msg.(type) {
	case Accepted, Rejected, FrameOverrun:
		select {
		case t.replyChan <- msg:
		default:
			// Nobody waiting; the stale reply is drained by the next Send
		}
		return

	case SensorStream:
		// Data aliases the reassembly buffer
		m.Data = append([]byte(nil), m.Data...)
		msg = m

	case Ready:
		select {
		case t.readyChan <- struct{}{}:
		default:
		}
	}

	select {
	case t.messageChan <- msg:
	default:
		// Message channel full, drop oldest
		select {
		case <-t.messageChan:
		default:
		}
		t.messageChan <- msg
	}
}

// Close stops the link and closes the port
func (t *HostLink) Close() error {
	close(t.stopChan)
	err := t.port.Close()
	<-t.doneChan // Wait for read loop to finish
	return err
}
