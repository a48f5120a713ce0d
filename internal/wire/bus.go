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

// Package wire simulates a two-wire bus inside one process.
//
// Bus implements periph's i2c.Bus so the same controller code drives either
// real hardware or a simulated Target. Target implements i2cpair.Peripheral
// and dispatches its handlers on a single goroutine, the way an interrupt
// driven peripheral runs at most one callback at a time.
package wire

import (
	"fmt"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"github.com/ZaparooProject/go-i2cpair/internal/syncutil"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultSpeed is the clock a fresh Bus reports.
const DefaultSpeed = 100 * physic.KiloHertz

// Transaction records one Tx call.
type Transaction struct {
	Write   []byte
	ReadLen int
	Addr    i2cpair.Address
	Status  i2cpair.Status
}

// Bus is an in-memory i2c.Bus.
type Bus struct {
	targets  map[i2cpair.Address]*Target
	name     string
	log      []Transaction
	latency  time.Duration
	speed    physic.Frequency
	mu       syncutil.Mutex
	injected i2cpair.Status
	closed   bool
}

// NewBus returns an empty bus.
func NewBus(name string) *Bus {
	return &Bus{
		name:    name,
		targets: make(map[i2cpair.Address]*Target),
		speed:   DefaultSpeed,
	}
}

// String implements i2c.Bus.
func (b *Bus) String() string {
	return b.name
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("%w: bus speed %s", i2cpair.ErrInvalidConfig, f)
	}
	b.mu.Lock()
	b.speed = f
	b.mu.Unlock()
	return nil
}

// Speed returns the last speed set.
func (b *Bus) Speed() physic.Frequency {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speed
}

// Tx implements i2c.Bus.
//
// A write is handed to the target and the call returns once the target has
// acknowledged it; the receive handler runs afterwards. A read runs the
// target's request handler and waits for its reply. Bytes the target did not
// supply read as 0x00.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	a := i2cpair.Address(addr)
	if addr > uint16(i2cpair.MaxAddress) {
		return fmt.Errorf("%w: %d", i2cpair.ErrInvalidAddress, addr)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return i2cpair.ErrBusClosed
	}
	target := b.targets[a]
	injected := b.injected
	b.injected = i2cpair.StatusSuccess
	latency := b.latency
	b.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}

	err := b.tx(target, a, w, r, injected)
	b.record(a, w, len(r), i2cpair.StatusOf(err))
	return err
}

func (*Bus) tx(target *Target, a i2cpair.Address, w, r []byte, injected i2cpair.Status) error {
	op := "write"
	if len(w) == 0 && len(r) > 0 {
		op = "read"
	}
	if injected != i2cpair.StatusSuccess {
		return &i2cpair.BusError{Op: op, Addr: a, Status: injected}
	}
	if target == nil {
		return &i2cpair.BusError{Op: op, Addr: a, Status: i2cpair.StatusAddressNACK}
	}

	if len(w) > 0 || len(r) == 0 {
		if len(w) > i2cpair.BufferLength {
			return &i2cpair.BusError{Op: "write", Addr: a, Status: i2cpair.StatusDataTooLong}
		}
		if status := target.Deliver(w); status != i2cpair.StatusSuccess {
			return &i2cpair.BusError{Op: "write", Addr: a, Status: status}
		}
	}

	if len(r) > 0 {
		data, err := target.Request(len(r))
		if err != nil {
			return fmt.Errorf("read %s: %w", a, err)
		}
		n := copy(r, data)
		clear(r[n:])
	}
	return nil
}

func (b *Bus) record(a i2cpair.Address, w []byte, readLen int, status i2cpair.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, Transaction{
		Addr:    a,
		Write:   append([]byte(nil), w...),
		ReadLen: readLen,
		Status:  status,
	})
}

// Close implements i2c.BusCloser. Attached targets stay usable on their own.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	clear(b.targets)
	return nil
}

func (b *Bus) attach(addr i2cpair.Address, t *Target) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return i2cpair.ErrBusClosed
	}
	if other, ok := b.targets[addr]; ok && other != t {
		return fmt.Errorf("address %s already in use on %s", addr, b.name)
	}
	b.targets[addr] = t
	return nil
}

func (b *Bus) detach(addr i2cpair.Address, t *Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.targets[addr] == t {
		delete(b.targets, addr)
	}
}

// Fault injection and inspection

// InjectStatus makes the next transaction fail with s without reaching any
// target.
func (b *Bus) InjectStatus(s i2cpair.Status) {
	b.mu.Lock()
	b.injected = s
	b.mu.Unlock()
}

// SetLatency delays every transaction by d.
func (b *Bus) SetLatency(d time.Duration) {
	b.mu.Lock()
	b.latency = d
	b.mu.Unlock()
}

// Transactions returns every transaction so far.
func (b *Bus) Transactions() []Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Transaction(nil), b.log...)
}

var _ i2c.BusCloser = (*Bus)(nil)
