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
	"fmt"
	"io"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
	"github.com/ZaparooProject/go-i2cpair/internal/frame"
	"github.com/ZaparooProject/go-i2cpair/internal/syncutil"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Bus is an i2c.Bus whose transactions run on a remote peripheral.
type Bus struct {
	port   io.ReadWriter
	closer io.Closer
	reader *frame.Reader
	name   string
	mu     syncutil.Mutex
	speed  physic.Frequency
	seq    byte
}

// Open opens portName as the controller end of a bridge.
func Open(portName string) (*Bus, error) {
	port, err := openPort(portName)
	if err != nil {
		return nil, err
	}
	b := NewBus(portName, port, DefaultTxTimeout)
	b.closer = port
	return b, nil
}

// NewBus runs the bridge over rw. timeout bounds each transaction; rw must
// return from Read periodically, as a serial port with a read timeout does.
func NewBus(name string, rw io.ReadWriter, timeout time.Duration) *Bus {
	return &Bus{
		port:   rw,
		reader: frame.NewReader(rw, timeout),
		name:   name,
	}
}

// String implements i2c.Bus.
func (b *Bus) String() string {
	return "uart:" + b.name
}

// SetSpeed implements i2c.Bus. The far side's bus clock is its own, so the
// value is only recorded.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	b.mu.Lock()
	b.speed = f
	b.mu.Unlock()
	return nil
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > uint16(i2cpair.MaxAddress) {
		return fmt.Errorf("%w: %d", i2cpair.ErrInvalidAddress, addr)
	}
	if len(r) > frame.MaxPayload || len(w) > frame.MaxPayload {
		return fmt.Errorf("%w: bridge transfers at most %d bytes", i2cpair.ErrDataTooLong, frame.MaxPayload)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.port == nil {
		return i2cpair.ErrBusClosed
	}

	a := i2cpair.Address(addr)
	if len(w) > 0 || len(r) == 0 {
		req := frame.Frame{TFI: frame.FromController, Cmd: frame.CmdWrite, Addr: byte(a), Payload: w}
		resp, err := b.roundTrip("write", req, frame.CmdWriteStatus)
		if err != nil {
			return err
		}
		if status := statusOf(resp); status != i2cpair.StatusSuccess {
			return &i2cpair.BusError{Op: "write", Addr: a, Status: status}
		}
	}

	if len(r) > 0 {
		req := frame.Frame{TFI: frame.FromController, Cmd: frame.CmdRequest, Addr: byte(a), Payload: []byte{byte(len(r))}}
		resp, err := b.roundTrip("read", req, frame.CmdRequestData)
		if err != nil {
			return err
		}
		n := copy(r, resp.Payload)
		clear(r[n:])
	}
	return nil
}

// roundTrip sends req and returns the matching reply. A NACK frame becomes a
// BusError carrying the far side's status. Replies to earlier, abandoned
// requests carry an older sequence number and are skipped.
func (b *Bus) roundTrip(op string, req frame.Frame, want byte) (frame.Frame, error) {
	b.seq++
	req.Seq = b.seq
	raw, err := frame.Encode(req)
	if err != nil {
		return frame.Frame{}, err
	}

	// Anything still buffered belongs to an abandoned transaction.
	b.reader.Reset()
	if err := writeAll(b.port, raw); err != nil {
		return frame.Frame{}, err
	}

	for {
		resp, err := b.reader.ReadFrame()
		if err != nil {
			return frame.Frame{}, fmt.Errorf("bridge %s to 0x%02X: %w", op, req.Addr, err)
		}
		if resp.TFI != frame.FromPeripheral || resp.Addr != req.Addr {
			i2cpair.Debugf("bridge: dropping stray frame tfi=0x%02X cmd=0x%02X addr=0x%02X",
				resp.TFI, resp.Cmd, resp.Addr)
			continue
		}
		if resp.Seq != req.Seq {
			i2cpair.Debugf("bridge: dropping late reply seq=%d, waiting for seq=%d", resp.Seq, req.Seq)
			continue
		}

		switch resp.Cmd {
		case want:
			return resp, nil
		case frame.CmdNACK:
			return frame.Frame{}, &i2cpair.BusError{Op: op, Addr: i2cpair.Address(req.Addr), Status: statusOf(resp)}
		default:
			return frame.Frame{}, fmt.Errorf("%w: command 0x%02X in reply to 0x%02X",
				i2cpair.ErrUnexpectedFrame, resp.Cmd, req.Cmd)
		}
	}
}

// statusOf reads a single status byte payload.
func statusOf(f frame.Frame) i2cpair.Status {
	if len(f.Payload) != 1 {
		return i2cpair.StatusOther
	}
	return i2cpair.Status(f.Payload[0])
}

// Close closes the port if Open opened it.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.port = nil
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.closer = nil
	if err != nil {
		return fmt.Errorf("failed to close UART port %s: %w", b.name, err)
	}
	return nil
}

var _ i2c.BusCloser = (*Bus)(nil)
