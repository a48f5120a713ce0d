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

// Package i2cpair is a two-node I2C exchange harness. A controller writes a
// fixed message to a peripheral and reads a fixed reply back, while the
// peripheral's asynchronous receive and request handlers signal completion
// through atomic flags that the main flow waits on with a bounded poll.
package i2cpair

import "fmt"

// Address is a 7-bit I2C peripheral address.
type Address uint8

// MaxAddress is the highest valid 7-bit address.
const MaxAddress Address = 0x7F

func (a Address) String() string {
	return fmt.Sprintf("0x%02X", uint8(a))
}

// Valid reports whether a fits in seven bits and is not the general call address.
func (a Address) Valid() bool {
	return a != 0 && a <= MaxAddress
}

// Status is the result of ending a controller transmission.
// Values follow the Wire library numbering so logs line up with firmware output.
type Status uint8

const (
	// StatusSuccess means every byte was acknowledged.
	StatusSuccess Status = iota
	// StatusDataTooLong means the transmit buffer overflowed.
	StatusDataTooLong
	// StatusAddressNACK means no peripheral acknowledged the address.
	StatusAddressNACK
	// StatusDataNACK means the peripheral refused a data byte.
	StatusDataNACK
	// StatusOther covers every other bus failure.
	StatusOther
	// StatusTimeout means the bus did not complete the transaction in time.
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusDataTooLong:
		return "data too long"
	case StatusAddressNACK:
		return "address NACK"
	case StatusDataNACK:
		return "data NACK"
	case StatusOther:
		return "other error"
	case StatusTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// ReceiveHandler runs on the peripheral when the controller has written bytes.
// n is the number of bytes the bus reports; handlers must not trust it and
// should drain with Available/ReadByte instead.
//
// Handlers execute in the bus's asynchronous context. They must not block,
// allocate, or do unbounded work.
type ReceiveHandler func(n int)

// RequestHandler runs on the peripheral when the controller issues a read.
// The same restrictions as ReceiveHandler apply.
type RequestHandler func()

// ByteSource is the draining half shared by both bus roles.
type ByteSource interface {
	// Available returns the number of bytes left to read.
	Available() int
	// ReadByte returns the next byte, or an error when none is left.
	ReadByte() (byte, error)
}

// Controller is the controller-mode half of a bus driver.
type Controller interface {
	ByteSource

	// Begin initializes the bus as controller.
	Begin() error

	// BeginTransmission starts buffering a write to addr.
	BeginTransmission(addr Address)

	// Write queues bytes for the current transmission and returns how many fit.
	Write(p []byte) int

	// EndTransmission sends the queued bytes and reports the outcome.
	EndTransmission() Status

	// RequestFrom reads up to maxLen bytes from addr into the receive buffer
	// and returns the number of bytes received.
	RequestFrom(addr Address, maxLen int) int
}

// Peripheral is the peripheral-mode half of a bus driver.
type Peripheral interface {
	ByteSource

	// Begin binds the peripheral to addr and starts dispatching handlers.
	Begin(addr Address) error

	// OnReceive registers the handler for inbound writes.
	OnReceive(h ReceiveHandler)

	// OnRequest registers the handler for controller reads.
	OnRequest(h RequestHandler)

	// Write queues reply bytes from inside a RequestHandler and returns how many fit.
	Write(p []byte) int
}
