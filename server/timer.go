// Package server provides the HTTP surface and breakdown persistence around
// the risk calculation pipeline.
package server

import (
	"sync"
	"time"
)

// FunctionDelayer provides a mechanism for delaying execution of a function.
// Every delayed function has an associated key; delaying another function
// with the same key before the first fires replaces it and resets the clock.
// This debounces per-patient cleanup when calculations arrive in bursts.
type FunctionDelayer struct {
	Duration time.Duration
	timers   map[string]*time.Timer
	mutex    sync.Mutex
}

// NewFunctionDelayer creates a FunctionDelayer with the given delay duration.
func NewFunctionDelayer(duration time.Duration) *FunctionDelayer {
	return &FunctionDelayer{
		Duration: duration,
		timers:   make(map[string]*time.Timer),
	}
}

// Delay schedules fn to run after the delayer's duration.  If a function is
// already scheduled under key, it is replaced and the timer restarts.
func (f *FunctionDelayer) Delay(key string, fn func()) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if timer, ok := f.timers[key]; ok {
		timer.Stop()
	}
	f.timers[key] = time.AfterFunc(f.Duration, func() {
		f.mutex.Lock()
		delete(f.timers, key)
		f.mutex.Unlock()
		fn()
	})
}
