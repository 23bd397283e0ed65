// Package protocol implements the vehicle link protocol: COBS-stuffed,
// CRC16-checked frames terminated by a single zero byte.
package protocol

// Version represents the link protocol version
const Version = "0.1.0"

// Protocol constants
const (
	FrameTerminator = 0x00 // Only place a zero byte may appear on the wire
	ChecksumSize    = 2    // CRC16, little-endian, after the payload
	TagSize         = 1    // Message discriminant

	// RemotePayloadMax is the largest host->device payload (Command: tag + 4 float32)
	RemotePayloadMax = TagSize + 4*4
	// RemoteFrameMax is the largest stuffed host->device frame including the terminator
	RemoteFrameMax = RemotePayloadMax + ChecksumSize + (RemotePayloadMax+ChecksumSize)/254 + 1 + 1

	// DevicePayloadMax bounds device->host payloads (log text, sensor data)
	DevicePayloadMax = 200
	// DeviceFrameMax is the largest stuffed device->host frame including the terminator
	DeviceFrameMax = DevicePayloadMax + ChecksumSize + (DevicePayloadMax+ChecksumSize)/254 + 1 + 1

	// QueueSize is the receive queue capacity; must be a power of two
	QueueSize = 256
)

// StuffedLen returns the worst-case stuffed size of n raw bytes, without terminator
func StuffedLen(n int) int {
	return n + n/254 + 1
}

// FrameLen returns the worst-case frame size for a payload of n bytes
func FrameLen(payload int) int {
	return StuffedLen(payload+ChecksumSize) + 1
}
