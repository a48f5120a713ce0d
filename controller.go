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
)

// Controller scenario names.
const (
	ScenarioControllerWrite = "controller write"
	ScenarioControllerRead  = "controller read"
)

// ControllerNode is the controller side of the exchange.
type ControllerNode struct {
	bus     Controller
	cfg     *Config
	payload []byte
}

// NewControllerNode prepares a node on bus. A nil cfg uses DefaultConfig.
func NewControllerNode(bus Controller, cfg *Config) *ControllerNode {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ControllerNode{
		bus:     bus,
		cfg:     cfg,
		payload: cfg.ControllerMessage.Bytes(),
	}
}

// Start initializes the bus as controller.
func (c *ControllerNode) Start() error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if err := c.bus.Begin(); err != nil {
		return fmt.Errorf("failed to start controller: %w", err)
	}
	Debugf("controller started, peripheral at %s", c.cfg.Address)
	return nil
}

// SendMessage writes the controller message to the peripheral in a single
// transaction. Any non-zero status fails the scenario.
func (c *ControllerNode) SendMessage(ctx context.Context) error {
	sc := newScenario(ScenarioControllerWrite)
	if err := ctx.Err(); err != nil {
		return sc.finish(err)
	}

	c.bus.BeginTransmission(c.cfg.Address)
	c.bus.Write(c.payload)
	sc.await()
	status := c.bus.EndTransmission()
	if status != StatusSuccess {
		return sc.fail(&ScenarioError{Err: ErrTransmissionFailure, Status: status})
	}
	return sc.finish(nil)
}

// RequestMessage reads from the peripheral and checks the reply is exactly
// the peripheral message.
func (c *ControllerNode) RequestMessage(ctx context.Context) error {
	sc := newScenario(ScenarioControllerRead)
	if err := ctx.Err(); err != nil {
		return sc.finish(err)
	}

	local := NewReceiveBuffer(c.cfg.BufferLength)
	sc.await()
	count := c.bus.RequestFrom(c.cfg.Address, local.Cap())
	if count <= 0 {
		return sc.fail(&ScenarioError{Err: ErrRequestFailure, Count: count})
	}

	local.Drain(c.bus)
	got := local.Bytes()
	if !c.cfg.PeripheralMessage.Equal(got) {
		return sc.fail(&ScenarioError{
			Err:   ErrContentMismatch,
			Count: count,
			Got:   got,
			Want:  c.cfg.PeripheralMessage.Bytes(),
		})
	}
	return sc.finish(nil)
}
