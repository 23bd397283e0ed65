//go:build !tinygo

package core

import "sync/atomic"

// On the host the clock only moves when told to, so tests and simulations
// are deterministic
var systemMillis atomic.Uint32

func getSystemMillis() uint32 {
	return systemMillis.Load()
}

func setSystemMillis(ms uint32) {
	systemMillis.Store(ms)
}

// AdvanceTime moves the host clock forward by ms
func AdvanceTime(ms uint32) {
	systemMillis.Add(ms)
}
