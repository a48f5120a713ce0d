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

// Package i2c drives the controller side of a bus through periph.io.
package i2c

import (
	"fmt"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Max clock frequency (400 kHz).
const maxClockFreq = 400 * physic.KiloHertz

// Controller implements i2cpair.Controller on any periph i2c.Bus.
type Controller struct {
	bus      i2c.Bus
	closer   i2c.BusCloser // Set when New opened the bus
	busName  string
	tx       []byte
	rx       []byte
	rxBuf    [i2cpair.BufferLength]byte
	rxPos    int
	addr     i2cpair.Address
	overflow bool
}

// New opens a bus by name, for example "/dev/i2c-1" or "1". An empty name
// opens the first bus found.
func New(busName string) (*Controller, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	c := NewWithBus(bus)
	c.closer = bus
	if busName != "" {
		c.busName = busName
	}
	return c, nil
}

// NewWithBus wraps an already open bus. Close does not close it.
func NewWithBus(bus i2c.Bus) *Controller {
	return &Controller{
		bus:     bus,
		busName: bus.String(),
		tx:      make([]byte, 0, i2cpair.BufferLength),
	}
}

// Begin implements i2cpair.Controller.
func (c *Controller) Begin() error {
	if c.bus == nil {
		return i2cpair.ErrBusClosed
	}
	_ = c.bus.SetSpeed(maxClockFreq) // Ignore error, continue with default speed
	i2cpair.Debugf("controller on %s", c.busName)
	return nil
}

// BeginTransmission implements i2cpair.Controller.
func (c *Controller) BeginTransmission(addr i2cpair.Address) {
	c.addr = addr
	c.tx = c.tx[:0]
	c.overflow = false
}

// Write implements i2cpair.Controller. Bytes beyond the transmit buffer are
// dropped and the transmission will report StatusDataTooLong.
func (c *Controller) Write(p []byte) int {
	n := min(len(p), i2cpair.BufferLength-len(c.tx))
	if n < len(p) {
		c.overflow = true
	}
	c.tx = append(c.tx, p[:n]...)
	return n
}

// EndTransmission implements i2cpair.Controller.
func (c *Controller) EndTransmission() i2cpair.Status {
	defer func() {
		c.tx = c.tx[:0]
		c.overflow = false
	}()

	if c.overflow {
		return i2cpair.StatusDataTooLong
	}
	if c.bus == nil {
		return i2cpair.StatusOther
	}

	dev := &i2c.Dev{Addr: uint16(c.addr), Bus: c.bus}
	if err := dev.Tx(c.tx, nil); err != nil {
		i2cpair.Debugf("write to %s failed: %v", c.addr, err)
		return statusOf(err)
	}
	return i2cpair.StatusSuccess
}

// RequestFrom implements i2cpair.Controller. maxLen is clamped to the
// receive buffer.
func (c *Controller) RequestFrom(addr i2cpair.Address, maxLen int) int {
	c.rx = c.rx[:0]
	c.rxPos = 0

	n := min(max(maxLen, 0), len(c.rxBuf))
	if n == 0 || c.bus == nil {
		return 0
	}

	dev := &i2c.Dev{Addr: uint16(addr), Bus: c.bus}
	if err := dev.Tx(nil, c.rxBuf[:n]); err != nil {
		i2cpair.Debugf("read from %s failed: %v", addr, err)
		return 0
	}
	c.rx = c.rxBuf[:n]
	return n
}

// Available implements i2cpair.ByteSource.
func (c *Controller) Available() int {
	return len(c.rx) - c.rxPos
}

// ReadByte implements i2cpair.ByteSource.
func (c *Controller) ReadByte() (byte, error) {
	if c.rxPos >= len(c.rx) {
		return 0, i2cpair.ErrNoData
	}
	b := c.rx[c.rxPos]
	c.rxPos++
	return b, nil
}

// String returns the bus name.
func (c *Controller) String() string {
	return c.busName
}

// Close releases the bus if New opened it.
func (c *Controller) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	c.bus = nil
	if err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", c.busName, err)
	}
	return nil
}

// statusOf maps a bus error to a Status, recognising kernel NACK errors.
func statusOf(err error) i2cpair.Status {
	if status := i2cpair.StatusOf(err); status != i2cpair.StatusOther {
		return status
	}
	if isNACK(err) {
		return i2cpair.StatusAddressNACK
	}
	return i2cpair.StatusOther
}

// ListBuses returns the names of the buses periph can open on this host.
func ListBuses() ([]string, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	refs := i2creg.All()
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names, nil
}

var _ i2cpair.Controller = (*Controller)(nil)
