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

// Peripheral scenario names.
const (
	ScenarioPeripheralReceive = "peripheral receive"
	ScenarioPeripheralSend    = "peripheral send"
)

// PeripheralNode is the peripheral side of the exchange.
//
// HandleReceive and HandleRequest are registered as the bus handlers and are
// the only writers of the buffer and flags. AwaitReceive and AwaitSent run on
// the main flow and only read the buffer after Received is observed set.
type PeripheralNode struct {
	bus      Peripheral
	cfg      *Config
	buffer   *ReceiveBuffer
	response []byte
	waiter   *Waiter

	// Received is set by HandleReceive once the buffer is terminated.
	Received CompletionFlag
	// Sent is set by HandleRequest once the response is queued.
	Sent CompletionFlag
}

// NewPeripheralNode prepares a node on bus. A nil cfg uses DefaultConfig.
// All memory the handlers touch is allocated here.
func NewPeripheralNode(bus Peripheral, cfg *Config) *PeripheralNode {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &PeripheralNode{
		bus:      bus,
		cfg:      cfg,
		buffer:   NewReceiveBuffer(cfg.BufferLength),
		response: cfg.PeripheralMessage.Bytes(),
		waiter:   NewWaiter(cfg.Wait),
	}
}

// Start registers the handlers and binds the bus to the configured address.
func (p *PeripheralNode) Start() error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	p.bus.OnReceive(p.HandleReceive)
	p.bus.OnRequest(p.HandleRequest)
	if err := p.bus.Begin(p.cfg.Address); err != nil {
		return fmt.Errorf("failed to start peripheral at %s: %w", p.cfg.Address, err)
	}
	Debugf("peripheral listening at %s", p.cfg.Address)
	return nil
}

// HandleReceive drains inbound bytes into the buffer and sets Received.
// The length hint is ignored; draining stops when the bus runs dry or the
// buffer is full.
func (p *PeripheralNode) HandleReceive(int) {
	p.buffer.Drain(p.bus)
	p.Received.Set()
}

// HandleRequest queues the response in one write and sets Sent.
func (p *PeripheralNode) HandleRequest() {
	p.bus.Write(p.response)
	p.Sent.Set()
}

// Buffer returns the receive buffer. Read it only after Received is set.
func (p *PeripheralNode) Buffer() *ReceiveBuffer {
	return p.buffer
}

// AwaitReceive waits for the receive handler and checks the buffer holds
// exactly the controller message.
func (p *PeripheralNode) AwaitReceive(ctx context.Context) error {
	sc := newScenario(ScenarioPeripheralReceive)
	sc.await()

	if !p.waiter.Wait(ctx, &p.Received) {
		return sc.fail(&ScenarioError{Err: ErrTimeout})
	}

	got := p.buffer.Bytes()
	if !p.cfg.ControllerMessage.Equal(got) {
		return sc.fail(&ScenarioError{
			Err:  ErrContentMismatch,
			Got:  got,
			Want: p.cfg.ControllerMessage.Bytes(),
		})
	}
	return sc.finish(nil)
}

// AwaitSent waits for the request handler to have queued the response.
func (p *PeripheralNode) AwaitSent(ctx context.Context) error {
	sc := newScenario(ScenarioPeripheralSend)
	sc.await()

	if !p.waiter.Wait(ctx, &p.Sent) {
		return sc.fail(&ScenarioError{Err: ErrTimeout})
	}
	return sc.finish(nil)
}
