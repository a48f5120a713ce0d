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

package frame

import (
	"fmt"
	"io"
	"time"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
)

// Reader pulls frames off a byte stream, tolerating fragmented reads and
// junk between frames.
//
// Serial ports with a read timeout return (0, nil) when nothing arrived, so
// the deadline is enforced here rather than by the underlying reader.
type Reader struct {
	r       io.Reader
	buf     []byte
	chunk   [64]byte
	timeout time.Duration
}

// NewReader wraps r. A zero timeout waits forever.
func NewReader(r io.Reader, timeout time.Duration) *Reader {
	return &Reader{r: r, timeout: timeout}
}

// ReadFrame returns the next well-formed frame. Corrupt frames are dropped
// and reported so the caller can decide whether to keep reading.
func (fr *Reader) ReadFrame() (Frame, error) {
	var deadline time.Time
	if fr.timeout > 0 {
		deadline = time.Now().Add(fr.timeout)
	}

	for {
		f, consumed, err := Parse(fr.buf)
		fr.buf = fr.buf[consumed:]
		if err == nil {
			return f, nil
		}
		if !IsIncomplete(err) {
			return Frame{}, err
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return Frame{}, fmt.Errorf("frame read: %w", i2cpair.ErrBusTimeout)
		}

		n, err := fr.r.Read(fr.chunk[:])
		fr.buf = append(fr.buf, fr.chunk[:n]...)
		if err != nil {
			return Frame{}, fmt.Errorf("frame read failed: %w", err)
		}
	}
}

// Reset drops any buffered bytes.
func (fr *Reader) Reset() {
	fr.buf = fr.buf[:0]
}
