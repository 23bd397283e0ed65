package protocol

// Stuff COBS-encodes src into dst and returns the number of bytes written.
// The output never contains FrameTerminator; the terminator itself is not
// appended. dst must hold StuffedLen(len(src)) bytes in the worst case.
func Stuff(dst, src []byte) (int, error) {
	if len(dst) == 0 {
		return 0, ErrBufferExhausted
	}
	codePos := 0
	code := byte(1)
	out := 1
	for _, b := range src {
		if b != 0 {
			if out >= len(dst) {
				return 0, ErrBufferExhausted
			}
			dst[out] = b
			out++
			code++
			if code != 0xFF {
				continue
			}
		}
		// Close the current block: either a zero was seen or the block is full
		dst[codePos] = code
		if out >= len(dst) {
			return 0, ErrBufferExhausted
		}
		codePos = out
		out++
		code = 1
	}
	dst[codePos] = code
	return out, nil
}

// UnstuffInPlace decodes a COBS frame in place and returns the decoded
// length. Decoding stops at the first FrameTerminator or at the end of buf.
func UnstuffInPlace(buf []byte) (int, error) {
	end := len(buf)
	for i, b := range buf {
		if b == FrameTerminator {
			end = i
			break
		}
	}

	in, out := 0, 0
	for in < end {
		code := int(buf[in])
		in++
		if in+code-1 > end {
			return 0, ErrMalformedPayload
		}
		// out never passes in, so the copy is safe in place
		out += copy(buf[out:], buf[in:in+code-1])
		in += code - 1
		if code != 0xFF && in < end {
			buf[out] = 0
			out++
		}
	}
	return out, nil
}
