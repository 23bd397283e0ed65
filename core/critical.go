package core

// Critical runs fn with interrupts disabled. Used to install state shared
// with the receive interrupt before the interrupt is enabled.
func Critical(fn func()) {
	state := enterCritical()
	defer exitCritical(state)
	fn()
}
