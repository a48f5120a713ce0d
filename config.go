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
	"fmt"
	"time"
)

const (
	// DefaultAddress is the peripheral address both nodes agree on.
	DefaultAddress Address = 0x01

	// BufferLength is the bus transfer limit, terminator slot included.
	BufferLength = 32

	// DefaultWaitTimeout bounds every flag wait.
	DefaultWaitTimeout = 5000 * time.Millisecond

	// DefaultPollInterval is the delay between flag checks.
	DefaultPollInterval = 100 * time.Millisecond
)

// WaitConfig controls how long and how often WaitFlag polls.
type WaitConfig struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// DefaultWaitConfig returns the 5s timeout with 100ms polling.
func DefaultWaitConfig() WaitConfig {
	return WaitConfig{
		Timeout:      DefaultWaitTimeout,
		PollInterval: DefaultPollInterval,
	}
}

// Config holds the settings both nodes must share.
type Config struct {
	ControllerMessage Message
	PeripheralMessage Message
	Wait              WaitConfig
	BufferLength      int
	Address           Address
}

// DefaultConfig returns the fixed harness configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           DefaultAddress,
		BufferLength:      BufferLength,
		ControllerMessage: ControllerMessage,
		PeripheralMessage: PeripheralMessage,
		Wait:              DefaultWaitConfig(),
	}
}

// Validate rejects settings the two nodes could never agree on.
func (c *Config) Validate() error {
	if !c.Address.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, c.Address)
	}
	if c.BufferLength < 2 {
		return fmt.Errorf("%w: buffer length %d leaves no room for data", ErrInvalidConfig, c.BufferLength)
	}
	// One slot is reserved for the terminator.
	if c.ControllerMessage.Len() > c.BufferLength-1 {
		return fmt.Errorf("%w: controller message is %d bytes, limit %d",
			ErrDataTooLong, c.ControllerMessage.Len(), c.BufferLength-1)
	}
	if c.PeripheralMessage.Len() > c.BufferLength-1 {
		return fmt.Errorf("%w: peripheral message is %d bytes, limit %d",
			ErrDataTooLong, c.PeripheralMessage.Len(), c.BufferLength-1)
	}
	if c.Wait.Timeout <= 0 || c.Wait.PollInterval <= 0 {
		return fmt.Errorf("%w: wait timeout and poll interval must be positive", ErrInvalidConfig)
	}
	if c.Wait.PollInterval > c.Wait.Timeout {
		return fmt.Errorf("%w: poll interval %v exceeds timeout %v",
			ErrInvalidConfig, c.Wait.PollInterval, c.Wait.Timeout)
	}
	return nil
}
