// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package i2cpair

import (
	"context"
	"sync/atomic"
	"time"
)

// CompletionFlag is a one-way signal from a handler to the main flow.
//
// Set is a release store and IsSet an acquire load, so everything the handler
// wrote before Set is visible to a reader that observes IsSet() == true.
// The zero value is unset. A flag is never cleared.
type CompletionFlag struct {
	v atomic.Bool
}

// Set marks the flag. Safe to call from handler context.
func (f *CompletionFlag) Set() {
	f.v.Store(true)
}

// IsSet reports whether Set has been called.
func (f *CompletionFlag) IsSet() bool {
	return f.v.Load()
}

// clock abstracts the monotonic time source so waits can be tested without sleeping.
type clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Sleep performs a context-aware sleep. Returns ctx.Err() if context is cancelled.
func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Waiter polls a CompletionFlag until it is set or the timeout elapses.
type Waiter struct {
	clock clock
	cfg   WaitConfig
}

// NewWaiter returns a Waiter using the wall clock's monotonic reading.
func NewWaiter(cfg WaitConfig) *Waiter {
	return &Waiter{cfg: cfg, clock: realClock{}}
}

// Wait blocks until flag is set, the timeout elapses, or ctx is done.
// It returns true only if the flag was observed set. The flag is never modified.
func (w *Waiter) Wait(ctx context.Context, flag *CompletionFlag) bool {
	if flag.IsSet() {
		return true
	}

	// time.Time carries a monotonic reading, so Sub is immune to wall clock
	// steps and does not wrap.
	start := w.clock.Now()
	for !flag.IsSet() {
		if err := w.clock.Sleep(ctx, w.cfg.PollInterval); err != nil {
			return flag.IsSet()
		}
		if w.clock.Now().Sub(start) >= w.cfg.Timeout {
			return flag.IsSet()
		}
	}
	return true
}

// WaitFlag waits for flag using cfg. It is the context-free form of Waiter.Wait.
func WaitFlag(flag *CompletionFlag, cfg WaitConfig) bool {
	return NewWaiter(cfg).Wait(context.Background(), flag)
}
