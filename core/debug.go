package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function. On the
// vehicle this is Session.Log, so debug text reaches the host as LogText.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Main loop only; the writer may block for one frame.
func DebugPrintln(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}
