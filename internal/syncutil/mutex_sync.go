//go:build !deadlock

// Package syncutil provides the mutex type used by the bus simulator and the
// logger. Without build tags it is a plain sync.Mutex; build with
// -tags=deadlock to swap in github.com/sasha-s/go-deadlock, which reports lock
// cycles between the dispatch goroutine and the main flow.
package syncutil

import "sync"

// Mutex wraps sync.Mutex.
//
//nolint:gocritic // Intentionally embedding sync.Mutex to expose its interface
type Mutex struct {
	sync.Mutex
}
