package protocol

import "unicode/utf8"

// crcOutput writes payload bytes into the scratch and folds each write
// into a running checksum. tmp holds field bytes before they are copied.
type crcOutput struct {
	payload ScratchOutput
	crc     uint16
	tmp     [maxVarintLen32]byte
}

func (c *crcOutput) reset() {
	c.payload.Reset()
	c.crc = CRCInit()
}

// fold adds the bytes written since start to the checksum
func (c *crcOutput) fold(start int) {
	c.crc = CRCUpdate(c.crc, c.payload.buf[start:c.payload.pos])
}

func (c *crcOutput) Output(data []byte) {
	start := c.payload.pos
	c.payload.Output(data)
	c.fold(start)
}

func (c *crcOutput) outputString(s string) {
	start := c.payload.pos
	c.payload.OutputString(s)
	c.fold(start)
}

func (c *crcOutput) outputByte(b byte) {
	c.tmp[0] = b
	c.Output(c.tmp[:1])
}

func (c *crcOutput) outputUint16(v uint16) {
	c.tmp[0] = byte(v)
	c.tmp[1] = byte(v >> 8)
	c.Output(c.tmp[:2])
}

func (c *crcOutput) outputFloat32(v float32) {
	putFloat32(c.tmp[:4], v)
	c.Output(c.tmp[:4])
}

func (c *crcOutput) outputUvarint(v uint32) {
	n := PutUvarint(c.tmp[:], v)
	c.Output(c.tmp[:n])
}

// Encoder frames messages using a reusable payload scratch, so encoding
// never allocates. An Encoder is not safe for concurrent use.
type Encoder struct {
	out crcOutput
}

// Encode serializes msg, appends its checksum, stuffs the result into dst
// and terminates it. It returns the frame as a view of dst. If dst (or the
// payload scratch) is too small, it returns ErrBufferExhausted and dst
// contents are unspecified; no partial frame is ever returned.
func (e *Encoder) Encode(msg Message, dst []byte) ([]byte, error) {
	w := &e.out
	w.reset()
	w.outputByte(msg.Tag())
	msg.encodeFields(w)

	if w.payload.Overflowed() || w.payload.CurPosition() > DevicePayloadMax {
		return nil, ErrBufferExhausted
	}

	crc := CRCComplete(w.crc)
	w.tmp[0] = byte(crc)
	w.tmp[1] = byte(crc >> 8)
	w.payload.Output(w.tmp[:2])

	n, err := Stuff(dst, w.payload.Result())
	if err != nil {
		return nil, err
	}
	if n >= len(dst) {
		return nil, ErrBufferExhausted
	}
	dst[n] = FrameTerminator
	return dst[:n+1], nil
}

// EncodeFrame is Encode with a throwaway Encoder. Loops that send
// repeatedly keep their own Encoder instead.
func EncodeFrame(msg Message, dst []byte) ([]byte, error) {
	var e Encoder
	return e.Encode(msg, dst)
}

// unframe unstuffs frame in place, verifies the checksum and returns the
// payload (a view of frame)
func unframe(frame []byte) ([]byte, error) {
	n, err := UnstuffInPlace(frame)
	if err != nil {
		return nil, err
	}
	// Need at least a tag plus the checksum
	if n <= ChecksumSize {
		return nil, ErrTruncated
	}

	payload := frame[:n-ChecksumSize]
	stored := uint16(frame[n-2]) | uint16(frame[n-1])<<8
	computed := Checksum(payload)
	if computed != stored {
		return nil, checksumMismatch(computed, stored)
	}
	return payload, nil
}

// DecodeRemote decodes a host->device frame, terminator included. The
// frame buffer is modified in place.
func DecodeRemote(frame []byte) (RemoteMessage, error) {
	payload, err := unframe(frame)
	if err != nil {
		return nil, err
	}

	tag, data := payload[0], payload[1:]
	switch tag {
	case TagCommand:
		var axes [4]float32
		for i := range axes {
			if axes[i], err = decodeFloat32(&data); err != nil {
				return nil, err
			}
		}
		if err := finish(data); err != nil {
			return nil, err
		}
		return Command{ActuatorCommand{
			ForwardLeft:  axes[0],
			ForwardRight: axes[1],
			Strafe:       axes[2],
			Vertical:     axes[3],
		}}, nil

	case TagHeartbeat:
		if err := finish(data); err != nil {
			return nil, err
		}
		return Heartbeat{}, nil
	}
	return nil, ErrMalformedPayload
}

// DecodeDevice decodes a device->host frame, terminator included. The
// frame buffer is modified in place and SensorStream.Data aliases it.
func DecodeDevice(frame []byte) (DeviceMessage, error) {
	payload, err := unframe(frame)
	if err != nil {
		return nil, err
	}

	var msg DeviceMessage
	tag, data := payload[0], payload[1:]
	switch tag {
	case TagReady:
		msg = Ready{}
	case TagFaultNotice:
		msg = FaultNotice{}
	case TagAccepted:
		msg = Accepted{}
	case TagFrameOverrun:
		msg = FrameOverrun{}

	case TagSensorStream:
		b, err := DecodeBytes(&data)
		if err != nil {
			return nil, err
		}
		msg = SensorStream{Data: b}

	case TagLogText:
		b, err := DecodeBytes(&data)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, ErrMalformedPayload
		}
		msg = LogText{Text: string(b)}

	case TagRejected:
		fe, err := decodeFrameError(&data)
		if err != nil {
			return nil, err
		}
		msg = Rejected{Err: fe}

	default:
		return nil, ErrMalformedPayload
	}

	if err := finish(data); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeFrameError(data *[]byte) (FrameError, error) {
	if len(*data) < 1 {
		return FrameError{}, ErrTruncated
	}
	kind := ErrorKind((*data)[0])
	*data = (*data)[1:]
	if kind > KindUnexpected {
		return FrameError{}, ErrMalformedPayload
	}

	fe := FrameError{Kind: kind}
	if kind == KindChecksumMismatch {
		if len(*data) < 4 {
			return FrameError{}, ErrTruncated
		}
		d := *data
		fe.Computed = uint16(d[0]) | uint16(d[1])<<8
		fe.Expected = uint16(d[2]) | uint16(d[3])<<8
		*data = d[4:]
	}
	return fe, nil
}

func decodeFloat32(data *[]byte) (float32, error) {
	if len(*data) < 4 {
		return 0, ErrTruncated
	}
	v := getFloat32(*data)
	*data = (*data)[4:]
	return v, nil
}

// finish rejects bytes left over after the last field
func finish(data []byte) error {
	if len(data) != 0 {
		return ErrMalformedPayload
	}
	return nil
}
