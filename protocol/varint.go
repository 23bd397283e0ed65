package protocol

import "encoding/binary"

// maxVarintLen32 bounds length prefixes; lengths never exceed a uint32
const maxVarintLen32 = 5

// PutUvarint writes v into buf as an unsigned LEB128 varint and returns the
// number of bytes written. buf must hold 5 bytes.
func PutUvarint(buf []byte, v uint32) int {
	return binary.PutUvarint(buf, uint64(v))
}

// DecodeUvarint decodes an unsigned varint from the data slice.
// The data slice is advanced past the consumed bytes.
func DecodeUvarint(data *[]byte) (uint32, error) {
	v, n := binary.Uvarint(*data)
	switch {
	case n == 0:
		return 0, ErrTruncated
	case n < 0, n > maxVarintLen32, v > 0xFFFFFFFF:
		return 0, ErrMalformedPayload
	}
	*data = (*data)[n:]
	return uint32(v), nil
}

// DecodeBytes decodes a length-prefixed byte array. The result aliases data.
func DecodeBytes(data *[]byte) ([]byte, error) {
	length, err := DecodeUvarint(data)
	if err != nil {
		return nil, err
	}
	if uint32(len(*data)) < length {
		return nil, ErrTruncated
	}
	result := (*data)[:length]
	*data = (*data)[length:]
	return result, nil
}
