package core

import (
	"encoding/binary"
	"errors"
)

// AccelSampleSize is the SensorStream payload of one accelerometer sample:
// X, Y, Z as little-endian int16 raw counts
const AccelSampleSize = 6

// ErrSensorBuffer is returned when a sample does not fit the caller's buffer
var ErrSensorBuffer = errors.New("sensor buffer too small")

// PutAccelSample packs one accelerometer sample into buf
func PutAccelSample(buf []byte, x, y, z int16) (int, error) {
	if len(buf) < AccelSampleSize {
		return 0, ErrSensorBuffer
	}
	binary.LittleEndian.PutUint16(buf[0:], uint16(x))
	binary.LittleEndian.PutUint16(buf[2:], uint16(y))
	binary.LittleEndian.PutUint16(buf[4:], uint16(z))
	return AccelSampleSize, nil
}
