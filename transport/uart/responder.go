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

package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"github.com/ZaparooProject/go-i2cpair/internal/frame"
	"github.com/ZaparooProject/go-i2cpair/internal/wire"
)

// servePollInterval is how often Serve checks for cancellation while idle.
const servePollInterval = 100 * time.Millisecond

// Responder is the peripheral's end of a bridge.
type Responder struct {
	port   io.ReadWriter
	closer io.Closer
	reader *frame.Reader
	target *wire.Target
	name   string
}

// Listen opens portName as the peripheral end of a bridge serving target.
func Listen(portName string, target *wire.Target) (*Responder, error) {
	port, err := openPort(portName)
	if err != nil {
		return nil, err
	}
	r := NewResponder(port, target)
	r.closer = port
	r.name = portName
	return r, nil
}

// NewResponder serves target over rw.
func NewResponder(rw io.ReadWriter, target *wire.Target) *Responder {
	return &Responder{
		port:   rw,
		reader: frame.NewReader(rw, servePollInterval),
		target: target,
		name:   "stream",
	}
}

// Serve answers frames until ctx is done or the link fails. Corrupt frames
// are dropped; the controller times out and reports them.
func (r *Responder) Serve(ctx context.Context) error {
	i2cpair.Debugf("bridge responder on %s", r.name)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := r.reader.ReadFrame()
		switch {
		case err == nil:
		case errors.Is(err, i2cpair.ErrBusTimeout):
			continue
		case errors.Is(err, i2cpair.ErrFrameCorrupted), errors.Is(err, i2cpair.ErrChecksumMismatch):
			i2cpair.Debugf("bridge: %v", err)
			continue
		default:
			return err
		}

		if req.TFI != frame.FromController {
			continue
		}

		raw, err := frame.Encode(r.handle(req))
		if err != nil {
			return err
		}
		if err := writeAll(r.port, raw); err != nil {
			return err
		}
	}
}

func (r *Responder) handle(req frame.Frame) frame.Frame {
	reply := frame.Frame{TFI: frame.FromPeripheral, Addr: req.Addr, Seq: req.Seq}
	nack := func(s i2cpair.Status) frame.Frame {
		reply.Cmd = frame.CmdNACK
		reply.Payload = []byte{byte(s)}
		return reply
	}

	addr, started := r.target.Address()
	if !started || req.Addr != byte(addr) {
		return nack(i2cpair.StatusAddressNACK)
	}

	switch req.Cmd {
	case frame.CmdWrite:
		reply.Cmd = frame.CmdWriteStatus
		reply.Payload = []byte{byte(r.target.Deliver(req.Payload))}
		return reply
	case frame.CmdRequest:
		if len(req.Payload) != 1 {
			return nack(i2cpair.StatusOther)
		}
		data, err := r.target.Request(int(req.Payload[0]))
		if err != nil {
			i2cpair.Debugf("bridge: request at %s failed: %v", addr, err)
			return nack(i2cpair.StatusOf(err))
		}
		reply.Cmd = frame.CmdRequestData
		reply.Payload = data
		return reply
	default:
		return nack(i2cpair.StatusOther)
	}
}

// Close closes the port if Listen opened it.
func (r *Responder) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	if err != nil {
		return fmt.Errorf("failed to close UART port %s: %w", r.name, err)
	}
	return nil
}
