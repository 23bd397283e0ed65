package core

import (
	"io"

	"thrustctl/protocol"
)

// LogTextMax is the longest LogText a single frame can carry: the payload
// minus the tag and a two-byte length prefix
const LogTextMax = protocol.DevicePayloadMax - protocol.TagSize - 2

// SensorDataMax is the longest SensorStream payload
const SensorDataMax = LogTextMax

// writeFrame pushes frame out one byte at a time. Each WriteByte may block
// until the UART has room.
func writeFrame(w io.ByteWriter, frame []byte) error {
	for _, b := range frame {
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}
