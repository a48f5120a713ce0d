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
	"io"
	"time"

	"github.com/ZaparooProject/go-i2cpair/internal/syncutil"
)

// stream is a one-way byte queue.
type stream struct {
	notify chan struct{}
	buf    []byte
	mu     syncutil.Mutex
	closed bool
}

func newStream() *stream {
	return &stream{notify: make(chan struct{}, 1)}
}

func (s *stream) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Conn is one end of a Pipe. Like a serial port with a read timeout, Read
// returns (0, nil) when nothing arrives in time.
type Conn struct {
	in          *stream
	out         *stream
	readTimeout time.Duration
	mu          syncutil.Mutex
}

// Pipe returns two connected ends of a full duplex byte link.
func Pipe(readTimeout time.Duration) (a, b *Conn) {
	ab, ba := newStream(), newStream()
	return &Conn{in: ba, out: ab, readTimeout: readTimeout},
		&Conn{in: ab, out: ba, readTimeout: readTimeout}
}

// SetReadTimeout changes how long Read waits for data.
func (c *Conn) SetReadTimeout(d time.Duration) error {
	c.mu.Lock()
	c.readTimeout = d
	c.mu.Unlock()
	return nil
}

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	timeout := c.readTimeout
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		c.in.mu.Lock()
		if len(c.in.buf) > 0 {
			n := copy(p, c.in.buf)
			c.in.buf = c.in.buf[n:]
			if len(c.in.buf) > 0 {
				c.in.signal()
			}
			c.in.mu.Unlock()
			return n, nil
		}
		closed := c.in.closed
		c.in.mu.Unlock()
		if closed {
			return 0, io.EOF
		}

		select {
		case <-c.in.notify:
		case <-timer.C:
			return 0, nil
		}
	}
}

// Write implements io.Writer.
func (c *Conn) Write(p []byte) (int, error) {
	c.out.mu.Lock()
	defer c.out.mu.Unlock()
	if c.out.closed {
		return 0, io.ErrClosedPipe
	}
	c.out.buf = append(c.out.buf, p...)
	c.out.signal()
	return len(p), nil
}

// Close ends both directions. The peer reads io.EOF once drained.
func (c *Conn) Close() error {
	for _, s := range []*stream{c.in, c.out} {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.signal()
	}
	return nil
}
