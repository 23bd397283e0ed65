package protocol

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// klipperCRC16 is the bitwise form of the same CRC, used as a reference
func klipperCRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b = b ^ uint8(crc&0xFF)
		b = b ^ (b << 4)
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

func TestChecksumCheckValue(t *testing.T) {
	require.Equal(t, uint16(0x6F91), Checksum([]byte("123456789")))
	require.Equal(t, uint16(0xFFFF), Checksum(nil))
}

func TestChecksumMatchesBitwiseReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		data := make([]byte, rng.Intn(64))
		rng.Read(data)
		require.Equal(t, klipperCRC16(data), Checksum(data), "data=%x", data)
	}
}

func TestChecksumStreaming(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0xFE, 0xFF, 0x10, 0x20}
	for split := 0; split <= len(data); split++ {
		crc := CRCInit()
		crc = CRCUpdate(crc, data[:split])
		crc = CRCUpdate(crc, data[split:])
		require.Equal(t, Checksum(data), CRCComplete(crc), "split=%d", split)
	}
}

func TestChecksumDifferent(t *testing.T) {
	require.NotEqual(t, Checksum([]byte{0x01, 0x02, 0x03}), Checksum([]byte{0x01, 0x02, 0x04}))
}
