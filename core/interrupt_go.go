//go:build !tinygo

package core

import "sync"

type criticalState struct{}

// Host builds have no interrupts; the mutex excludes the producer
// goroutine in tests instead.
var criticalMutex sync.Mutex

func enterCritical() criticalState {
	criticalMutex.Lock()
	return criticalState{}
}

func exitCritical(criticalState) {
	criticalMutex.Unlock()
}
