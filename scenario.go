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

import "time"

// ScenarioState is the progress of a single scenario.
type ScenarioState int

const (
	// StateIdle is the state before the scenario touches the bus.
	StateIdle ScenarioState = iota
	// StateAwaitingEvent is entered once a transaction is issued or a handler is armed.
	StateAwaitingEvent
	// StateCompleted means the awaited event happened and verification passed.
	StateCompleted
	// StateTimedOut means the flag was still unset at the deadline.
	StateTimedOut
	// StateFailed means the bus or the content check rejected the exchange.
	StateFailed
)

func (s ScenarioState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingEvent:
		return "awaiting"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s ScenarioState) Terminal() bool {
	return s == StateCompleted || s == StateTimedOut || s == StateFailed
}

// StateOf classifies a scenario's returned error.
func StateOf(err error) ScenarioState {
	switch {
	case err == nil:
		return StateCompleted
	case IsTimeout(err):
		return StateTimedOut
	default:
		return StateFailed
	}
}

// scenario tracks one run through the state machine and logs transitions.
type scenario struct {
	started time.Time
	name    string
	state   ScenarioState
}

func newScenario(name string) *scenario {
	return &scenario{name: name, state: StateIdle, started: time.Now()}
}

// await moves Idle to AwaitingEvent. Terminal scenarios stay where they are.
func (s *scenario) await() {
	if s.state != StateIdle {
		return
	}
	s.state = StateAwaitingEvent
	Debugf("%s: %s", s.name, s.state)
}

// finish moves the scenario to the terminal state matching err and returns err.
func (s *scenario) finish(err error) error {
	if s.state.Terminal() {
		return err
	}
	s.state = StateOf(err)
	if err != nil {
		Debugf("%s: %s after %v: %v", s.name, s.state, time.Since(s.started), err)
	} else {
		Debugf("%s: %s after %v", s.name, s.state, time.Since(s.started))
	}
	return err
}

// fail builds a ScenarioError for this scenario and finishes with it.
func (s *scenario) fail(e *ScenarioError) error {
	e.Scenario = s.name
	return s.finish(e)
}
