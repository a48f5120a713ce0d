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

package wire

import (
	"fmt"
	"sync"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"github.com/ZaparooProject/go-i2cpair/internal/syncutil"
)

// DefaultRequestTimeout bounds how long a read waits for the request handler.
const DefaultRequestTimeout = time.Second

// eventQueueDepth is how many writes can wait for the receive handler before
// the target stops acknowledging.
const eventQueueDepth = 4

type event struct {
	reply chan []byte
	data  []byte
	max   int
}

// Target is a simulated peripheral.
type Target struct {
	onReceive      i2cpair.ReceiveHandler
	onRequest      i2cpair.RequestHandler
	bus            *Bus
	events         chan event
	done           chan struct{}
	rx             []byte
	tx             []byte
	rxPos          int
	requestTimeout time.Duration
	mu             syncutil.Mutex
	closeOnce      sync.Once
	addr           i2cpair.Address
	started        bool
}

// NewTarget returns a target that attaches to bus when started. bus may be
// nil for a target driven directly through Deliver and Request.
func NewTarget(bus *Bus) *Target {
	t := &Target{
		bus:            bus,
		events:         make(chan event, eventQueueDepth),
		done:           make(chan struct{}),
		requestTimeout: DefaultRequestTimeout,
	}
	go t.dispatch()
	return t
}

// Begin implements i2cpair.Peripheral.
func (t *Target) Begin(addr i2cpair.Address) error {
	if !addr.Valid() {
		return fmt.Errorf("%w: %s", i2cpair.ErrInvalidAddress, addr)
	}
	if t.bus != nil {
		if err := t.bus.attach(addr, t); err != nil {
			return err
		}
	}

	t.mu.Lock()
	t.addr = addr
	t.started = true
	t.mu.Unlock()
	i2cpair.Debugf("target listening at %s", addr)
	return nil
}

// OnReceive implements i2cpair.Peripheral.
func (t *Target) OnReceive(h i2cpair.ReceiveHandler) {
	t.mu.Lock()
	t.onReceive = h
	t.mu.Unlock()
}

// OnRequest implements i2cpair.Peripheral.
func (t *Target) OnRequest(h i2cpair.RequestHandler) {
	t.mu.Lock()
	t.onRequest = h
	t.mu.Unlock()
}

// Available implements i2cpair.ByteSource.
func (t *Target) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rx) - t.rxPos
}

// ReadByte implements i2cpair.ByteSource.
func (t *Target) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rxPos >= len(t.rx) {
		return 0, i2cpair.ErrNoData
	}
	b := t.rx[t.rxPos]
	t.rxPos++
	return b, nil
}

// Write implements i2cpair.Peripheral. Bytes beyond the transmit buffer are
// dropped.
func (t *Target) Write(p []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := min(len(p), i2cpair.BufferLength-len(t.tx))
	if n <= 0 {
		return 0
	}
	t.tx = append(t.tx, p[:n]...)
	return n
}

// Address returns the address passed to Begin and whether Begin succeeded.
func (t *Target) Address() (i2cpair.Address, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addr, t.started
}

// SetRequestTimeout changes how long Request waits for the handler.
func (t *Target) SetRequestTimeout(d time.Duration) {
	t.mu.Lock()
	t.requestTimeout = d
	t.mu.Unlock()
}

// Deliver acknowledges a controller write and queues data for the receive
// handler. An empty write is an address probe and reaches no handler.
func (t *Target) Deliver(data []byte) i2cpair.Status {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started {
		return i2cpair.StatusAddressNACK
	}
	if len(data) == 0 {
		return i2cpair.StatusSuccess
	}
	if len(data) > i2cpair.BufferLength {
		return i2cpair.StatusDataTooLong
	}

	ev := event{data: append([]byte(nil), data...)}
	select {
	case <-t.done:
		return i2cpair.StatusAddressNACK
	default:
	}
	select {
	case t.events <- ev:
		return i2cpair.StatusSuccess
	default:
		// Receive handler is backed up.
		return i2cpair.StatusDataNACK
	}
}

// Request runs the request handler and returns at most maxLen bytes of what
// it wrote.
func (t *Target) Request(maxLen int) ([]byte, error) {
	t.mu.Lock()
	started, addr, timeout := t.started, t.addr, t.requestTimeout
	t.mu.Unlock()
	if !started {
		return nil, &i2cpair.BusError{Op: "read", Addr: addr, Status: i2cpair.StatusAddressNACK}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	ev := event{reply: make(chan []byte, 1), max: maxLen}
	select {
	case t.events <- ev:
	case <-t.done:
		return nil, i2cpair.ErrBusClosed
	case <-timer.C:
		return nil, i2cpair.ErrBusTimeout
	}

	select {
	case data := <-ev.reply:
		return data, nil
	case <-t.done:
		return nil, i2cpair.ErrBusClosed
	case <-timer.C:
		return nil, i2cpair.ErrBusTimeout
	}
}

// Close stops handler dispatch and detaches from the bus.
func (t *Target) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.mu.Lock()
		addr, started := t.addr, t.started
		t.started = false
		t.mu.Unlock()
		if started && t.bus != nil {
			t.bus.detach(addr, t)
		}
	})
	return nil
}

func (t *Target) dispatch() {
	for {
		select {
		case <-t.done:
			return
		case ev := <-t.events:
			if ev.reply != nil {
				t.runRequest(ev)
			} else {
				t.runReceive(ev)
			}
		}
	}
}

func (t *Target) runReceive(ev event) {
	t.mu.Lock()
	t.rx = ev.data
	t.rxPos = 0
	h := t.onReceive
	t.mu.Unlock()
	if h != nil {
		h(len(ev.data))
	}
}

func (t *Target) runRequest(ev event) {
	t.mu.Lock()
	t.tx = t.tx[:0]
	h := t.onRequest
	t.mu.Unlock()
	if h != nil {
		h()
	}

	t.mu.Lock()
	n := min(len(t.tx), ev.max)
	out := append([]byte(nil), t.tx[:n]...)
	t.mu.Unlock()
	ev.reply <- out
}

var _ i2cpair.Peripheral = (*Target)(nil)
