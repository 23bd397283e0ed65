package protocol

import (
	"errors"
	"strconv"
)

// ErrorKind classifies link failures. Transport-level kinds are
// KindBufferExhausted and overruns; the rest describe frame content.
type ErrorKind uint8

const (
	KindMalformedPayload ErrorKind = iota
	KindChecksumMismatch
	KindTruncated
	KindBufferExhausted
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedPayload:
		return "malformed payload"
	case KindChecksumMismatch:
		return "checksum mismatch"
	case KindTruncated:
		return "truncated"
	case KindBufferExhausted:
		return "buffer exhausted"
	case KindUnexpected:
		return "unexpected"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// FrameError is the error returned by the codec. Computed and Expected are
// only meaningful for KindChecksumMismatch.
type FrameError struct {
	Kind     ErrorKind
	Computed uint16
	Expected uint16
}

// Error implements error.
func (e *FrameError) Error() string {
	if e.Kind == KindChecksumMismatch {
		return "checksum mismatch: computed 0x" + strconv.FormatUint(uint64(e.Computed), 16) +
			", expected 0x" + strconv.FormatUint(uint64(e.Expected), 16)
	}
	return e.Kind.String()
}

// Is matches any FrameError of the same kind, so errors.Is works against
// the sentinels regardless of checksum values.
func (e *FrameError) Is(target error) bool {
	t, ok := target.(*FrameError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMalformedPayload = &FrameError{Kind: KindMalformedPayload}
	ErrChecksumMismatch = &FrameError{Kind: KindChecksumMismatch}
	ErrTruncated        = &FrameError{Kind: KindTruncated}
	ErrBufferExhausted  = &FrameError{Kind: KindBufferExhausted}
	ErrUnexpected       = &FrameError{Kind: KindUnexpected}
)

// AsFrameError converts any error into a FrameError. Errors that did not
// come from the codec become KindUnexpected.
func AsFrameError(err error) FrameError {
	var fe *FrameError
	if errors.As(err, &fe) {
		return *fe
	}
	return FrameError{Kind: KindUnexpected}
}

func checksumMismatch(computed, expected uint16) error {
	return &FrameError{Kind: KindChecksumMismatch, Computed: computed, Expected: expected}
}
