package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	for _, expected := range []uint32{0, 1, 127, 128, 255, 300, 16383, 16384, 1000000, 0xFFFFFFFF} {
		var buf [maxVarintLen32]byte
		data := buf[:PutUvarint(buf[:], expected)]

		decoded, err := DecodeUvarint(&data)
		require.NoError(t, err)
		require.Equal(t, expected, decoded)
		require.Empty(t, data)
	}
}

func TestUvarintErrors(t *testing.T) {
	empty := []byte{}
	_, err := DecodeUvarint(&empty)
	require.ErrorIs(t, err, ErrTruncated)

	cut := []byte{0x80, 0x80}
	_, err = DecodeUvarint(&cut)
	require.ErrorIs(t, err, ErrTruncated)

	overlong := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, err = DecodeUvarint(&overlong)
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestBytesRoundTrip(t *testing.T) {
	for _, expected := range [][]byte{{}, {0x00}, {1, 2, 3}, make([]byte, 150)} {
		var buf [maxVarintLen32]byte
		data := append(buf[:PutUvarint(buf[:], uint32(len(expected)))], expected...)

		decoded, err := DecodeBytes(&data)
		require.NoError(t, err)
		require.Equal(t, expected, decoded)
		require.Empty(t, data)
	}

	short := []byte{0x05, 0x01}
	_, err := DecodeBytes(&short)
	require.ErrorIs(t, err, ErrTruncated)
}
