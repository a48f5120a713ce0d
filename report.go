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
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputFormat selects how results are reported.
type OutputFormat string

const (
	// FormatText prints one line per test and a summary.
	FormatText OutputFormat = "text"
	// FormatJSON prints a single JSON document.
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, s)
	}
}

// Summary counts results.
type Summary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summarize counts passed and failed results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

type reportEntry struct {
	Role       Role    `json:"role"`
	Name       string  `json:"name"`
	State      string  `json:"state"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Passed     bool    `json:"passed"`
}

type report struct {
	Tests   []reportEntry `json:"tests"`
	Summary Summary       `json:"summary"`
}

// WriteReport writes results to w in the given format.
func WriteReport(w io.Writer, results []Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSONReport(w, results)
	case FormatText, "":
		return writeTextReport(w, results)
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, format)
	}
}

func writeTextReport(w io.Writer, results []Result) error {
	for _, r := range results {
		mark := "PASS"
		if !r.Passed() {
			mark = "FAIL"
		}
		line := fmt.Sprintf("%s %s/%s (%s, %dms)",
			mark, r.Role, r.Name, r.State, r.Duration.Milliseconds())
		if r.Err != nil {
			line += ": " + r.Err.Error()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	s := Summarize(results)
	if _, err := fmt.Fprintf(w, "%d passed, %d failed\n", s.Passed, s.Failed); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeJSONReport(w io.Writer, results []Result) error {
	rep := report{
		Tests:   make([]reportEntry, 0, len(results)),
		Summary: Summarize(results),
	}
	for _, r := range results {
		e := reportEntry{
			Role:       r.Role,
			Name:       r.Name,
			State:      r.State.String(),
			Passed:     r.Passed(),
			DurationMS: float64(r.Duration.Microseconds()) / 1000,
		}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		rep.Tests = append(rep.Tests, e)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
