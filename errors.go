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
	"errors"
	"fmt"
)

// Scenario failures. None of these are retried.
var (
	ErrTransmissionFailure = errors.New("transmission failed")
	ErrRequestFailure      = errors.New("request returned no data")
	ErrContentMismatch     = errors.New("content mismatch")
	ErrTimeout             = errors.New("timed out waiting for handler")
)

// Bus and configuration errors
var (
	ErrBusClosed      = errors.New("bus is closed")
	ErrInvalidAddress = errors.New("invalid address")
	ErrDataTooLong    = errors.New("data too long")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNoData         = errors.New("no data available")
	ErrBusTimeout     = errors.New("timed out waiting for bus reply")
)

// Serial bridge errors
var (
	ErrFrameCorrupted   = errors.New("frame corrupted")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrUnexpectedFrame  = errors.New("unexpected frame")
)

// ScenarioError carries the details of a failed scenario.
type ScenarioError struct {
	Err      error  // One of the scenario sentinels
	Scenario string // Scenario that failed
	Got      []byte // Bytes observed, for content mismatches
	Want     []byte // Bytes expected, for content mismatches
	Count    int    // Byte count returned by a request
	Status   Status // Status returned by a transmission
}

func (e *ScenarioError) Error() string {
	switch {
	case errors.Is(e.Err, ErrTransmissionFailure):
		return fmt.Sprintf("%s: %v (status %d: %s)", e.Scenario, e.Err, uint8(e.Status), e.Status)
	case errors.Is(e.Err, ErrRequestFailure):
		return fmt.Sprintf("%s: %v (count %d)", e.Scenario, e.Err, e.Count)
	case errors.Is(e.Err, ErrContentMismatch):
		return fmt.Sprintf("%s: %v: got %q, want %q", e.Scenario, e.Err, e.Got, e.Want)
	default:
		return fmt.Sprintf("%s: %v", e.Scenario, e.Err)
	}
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}

// BusError reports a transaction the bus refused.
type BusError struct {
	Op     string
	Addr   Address
	Status Status
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Addr, e.Status)
}

// StatusOf maps an error from a bus transaction to a Status.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var be *BusError
	if errors.As(err, &be) {
		return be.Status
	}
	switch {
	case errors.Is(err, ErrDataTooLong):
		return StatusDataTooLong
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrBusTimeout):
		return StatusTimeout
	default:
		return StatusOther
	}
}

// IsTimeout reports whether err is a handler wait timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
