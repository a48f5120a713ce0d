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
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// Test names shared by both roles. A controller test and the peripheral test
// with the same name are two halves of one exchange.
const (
	TestSendReceive  = "controller_can_send_and_peripheral_can_receive_data"
	TestRequestReply = "peripheral_can_send_and_controller_can_receive_data"
)

// Role identifies which side of the bus a suite runs on.
type Role string

const (
	// RoleController runs the controller half of each test.
	RoleController Role = "controller"
	// RolePeripheral runs the peripheral half of each test.
	RolePeripheral Role = "peripheral"
)

// TestFunc is one half of a named test.
type TestFunc func(ctx context.Context) error

// Test is a named TestFunc.
type Test struct {
	Run  TestFunc
	Name string
}

// Result is the outcome of running one Test.
type Result struct {
	Err      error
	Role     Role
	Name     string
	State    ScenarioState
	Duration time.Duration
}

// Passed reports whether the test completed without error.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Suite is an ordered list of tests for one role.
type Suite struct {
	role  Role
	tests []Test
}

// NewSuite returns an empty suite for role.
func NewSuite(role Role) *Suite {
	return &Suite{role: role}
}

// ControllerSuite returns the controller's half of the standard tests.
func ControllerSuite(n *ControllerNode) *Suite {
	s := NewSuite(RoleController)
	s.Add(TestSendReceive, n.SendMessage)
	s.Add(TestRequestReply, n.RequestMessage)
	return s
}

// PeripheralSuite returns the peripheral's half of the standard tests.
func PeripheralSuite(n *PeripheralNode) *Suite {
	s := NewSuite(RolePeripheral)
	s.Add(TestSendReceive, n.AwaitReceive)
	s.Add(TestRequestReply, n.AwaitSent)
	return s
}

// Role returns the suite's role.
func (s *Suite) Role() Role {
	return s.role
}

// Add appends a test. Tests run in the order they were added.
func (s *Suite) Add(name string, fn TestFunc) {
	s.tests = append(s.tests, Test{Name: name, Run: fn})
}

// Names returns the test names in run order.
func (s *Suite) Names() []string {
	names := make([]string, len(s.tests))
	for i, t := range s.tests {
		names[i] = t.Name
	}
	return names
}

// Lookup finds a test by name, tolerating differences in punctuation and case.
func (s *Suite) Lookup(name string) (Test, bool) {
	found, ok := FindTestName(s.Names(), name)
	if !ok {
		return Test{}, false
	}
	for _, t := range s.tests {
		if t.Name == found {
			return t, true
		}
	}
	return Test{}, false
}

// Select returns the tests whose names match any of the glob patterns.
// No patterns selects every test.
func (s *Suite) Select(patterns []string) ([]Test, error) {
	if len(patterns) == 0 {
		out := make([]Test, len(s.tests))
		copy(out, s.tests)
		return out, nil
	}
	var out []Test
	for _, t := range s.tests {
		matched, err := matchesAny(t.Name, patterns)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, t)
		}
	}
	return out, nil
}

func matchesAny(name string, patterns []string) (bool, error) {
	for _, p := range patterns {
		ok, err := path.Match(p, name)
		if err != nil {
			return false, fmt.Errorf("invalid test pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Run executes the selected tests in order. A failing test does not stop the
// run. The returned error is non-nil only for invalid patterns.
func (s *Suite) Run(ctx context.Context, patterns []string) ([]Result, error) {
	tests, err := s.Select(patterns)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(tests))
	for _, t := range tests {
		results = append(results, s.runTest(ctx, t))
	}
	return results, nil
}

func (s *Suite) runTest(ctx context.Context, t Test) Result {
	Debugf("%s: running %s", s.role, t.Name)
	start := time.Now()
	err := t.Run(ctx)
	res := Result{
		Role:     s.role,
		Name:     t.Name,
		Err:      err,
		State:    StateOf(err),
		Duration: time.Since(start),
	}
	if err != nil {
		Debugf("%s: %s failed: %v", s.role, t.Name, err)
	}
	return res
}

var (
	nonIdentifier  = regexp.MustCompile(`\W`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// FindTestName maps name onto one of names. It tries an exact match, then
// with non-identifier characters replaced by underscores, then with repeated
// and edge underscores collapsed, then case-insensitively.
func FindTestName(names []string, name string) (string, bool) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	has := func(n string) bool {
		_, ok := set[n]
		return ok
	}

	if has(name) {
		return name, true
	}
	name = nonIdentifier.ReplaceAllString(name, "_")
	if has(name) {
		return name, true
	}
	name = strings.Trim(underscoreRuns.ReplaceAllString(name, "_"), "_")
	if has(name) {
		return name, true
	}
	name = strings.ToLower(name)
	if has(name) {
		return name, true
	}
	return "", false
}
