//go:build deadlock

// Package syncutil provides the mutex type used by the bus simulator and the
// logger. This file is compiled with -tags=deadlock and backs it with
// github.com/sasha-s/go-deadlock.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

func init() {
	// Matches the default handler wait timeout.
	deadlock.Opts.DeadlockTimeout = 5 * time.Second
}

// Mutex wraps deadlock.Mutex for deadlock detection.
type Mutex struct {
	deadlock.Mutex
}
