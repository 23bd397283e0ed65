package core

// Clock returns the current time in milliseconds. It wraps every ~49 days;
// all comparisons go through Elapsed.
type Clock func() uint32

// GetTime returns milliseconds since boot
func GetTime() uint32 {
	return getSystemMillis()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ms uint32) {
	setSystemMillis(ms)
}

// Elapsed returns now - since, correct across counter wrap
func Elapsed(now, since uint32) uint32 {
	return now - since
}

// Expired reports whether more than timeout ms have passed since since
func Expired(now, since, timeout uint32) bool {
	return Elapsed(now, since) > timeout
}
