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

import "bytes"

// Terminator closes the data held in a ReceiveBuffer.
const Terminator byte = 0x00

// ReceiveBuffer is a fixed-capacity byte buffer with a reserved terminator slot.
//
// Storage is allocated once by NewReceiveBuffer; Drain never allocates, which
// makes it safe to call from handler context. The buffer has one writer (the
// handler that drains into it) and one reader (the main flow, after the
// matching CompletionFlag is set). It has no lock of its own.
type ReceiveBuffer struct {
	data []byte
	n    int
}

// NewReceiveBuffer allocates a buffer of capacity bytes, one of which is
// reserved for the terminator. Capacities below 1 are raised to 1.
func NewReceiveBuffer(capacity int) *ReceiveBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ReceiveBuffer{data: make([]byte, capacity)}
}

// Cap returns the capacity including the terminator slot.
func (b *ReceiveBuffer) Cap() int {
	return len(b.data)
}

// Drain reads bytes from src while any are available and at most Cap()-1 have
// been stored, then writes the terminator. Previous content is replaced.
// It returns the number of data bytes stored.
func (b *ReceiveBuffer) Drain(src ByteSource) int {
	size := 0
	for src.Available() > 0 && size < len(b.data)-1 {
		c, err := src.ReadByte()
		if err != nil {
			break
		}
		b.data[size] = c
		size++
	}
	b.data[size] = Terminator
	b.n = size
	return size
}

// Len returns the number of bytes stored by the last Drain.
func (b *ReceiveBuffer) Len() int {
	return b.n
}

// Bytes returns a copy of the content up to the first terminator.
func (b *ReceiveBuffer) Bytes() []byte {
	content := b.data[:b.n]
	if i := bytes.IndexByte(content, Terminator); i >= 0 {
		content = content[:i]
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out
}

// String returns the content up to the first terminator.
func (b *ReceiveBuffer) String() string {
	return string(b.Bytes())
}

// Terminated reports whether the slot right after the stored bytes holds the terminator.
func (b *ReceiveBuffer) Terminated() bool {
	return b.n < len(b.data) && b.data[b.n] == Terminator
}
