package sabertooth

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, New(&out, [2]uint8{}).Init())
	require.Equal(t, []byte{AutobaudByte}, out.Bytes())
}

func TestPacketChecksum(t *testing.T) {
	require.Equal(t, [4]byte{128, 0, 64, (128 + 0 + 64) & 0x7F}, Packet(128, 0, 64))
	require.Equal(t, [4]byte{129, 5, 127, 5}, Packet(129, 5, 127))
}

func TestDriveChannels(t *testing.T) {
	testCases := []struct {
		channel uint8
		speed   int8
		want    [4]byte
	}{
		{0, 63, Packet(128, 0, 63)},
		{0, -63, Packet(128, 1, 63)},
		{1, 127, Packet(128, 4, 127)},
		{1, -127, Packet(128, 5, 127)},
		{2, 0, Packet(129, 0, 0)},
		{3, -1, Packet(129, 5, 1)},
		{3, -128, Packet(129, 5, 127)},
	}
	for _, tc := range testCases {
		var out bytes.Buffer
		d := New(&out, [2]uint8{128, 129})
		require.NoError(t, d.Drive(tc.channel, tc.speed))
		require.Equal(t, tc.want[:], out.Bytes(), "channel %d speed %d", tc.channel, tc.speed)
	}
}

func TestDriveCustomAddresses(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, [2]uint8{130, 131})
	require.NoError(t, d.Drive(2, 10))
	require.Equal(t, byte(131), out.Bytes()[0])
}

func TestDriveUnknownChannel(t *testing.T) {
	var out bytes.Buffer
	require.ErrorIs(t, New(&out, [2]uint8{}).Drive(4, 10), ErrChannel)
	require.Zero(t, out.Len())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("uart fault") }

func TestDriveWriteError(t *testing.T) {
	require.Error(t, New(brokenWriter{}, [2]uint8{}).Drive(0, 1))
}
