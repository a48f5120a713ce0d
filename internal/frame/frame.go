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
	"bytes"
	"errors"
	"fmt"

	i2cpair "github.com/ZaparooProject/go-i2cpair"
)

// errIncomplete means the buffer holds the start of a frame but not all of it.
var errIncomplete = errors.New("incomplete frame")

var startCode = []byte{StartCode1, StartCode2}

// Frame is one decoded bridge message.
type Frame struct {
	Payload []byte
	TFI     byte
	Cmd     byte
	Addr    byte
	Seq     byte
}

// Encode serializes f.
func Encode(f Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayload {
		return nil, fmt.Errorf("%w: payload %d bytes, limit %d", i2cpair.ErrDataTooLong, len(f.Payload), MaxPayload)
	}
	dataLen := headerLen + len(f.Payload)

	out := make([]byte, 0, overheadLength+dataLen)
	out = append(out, Preamble, StartCode1, StartCode2, byte(dataLen), Complement(byte(dataLen)))
	out = append(out, f.TFI, f.Cmd, f.Addr, f.Seq)
	out = append(out, f.Payload...)
	out = append(out, Complement(CalculateChecksum(out[5:])), Postamble)
	return out, nil
}

// Parse decodes the first frame in buf.
//
// consumed is the number of leading bytes the caller can discard: the whole
// frame on success, junk before a start code when more data is needed, or the
// bad frame on a checksum or framing error so the next call resynchronizes.
func Parse(buf []byte) (f Frame, consumed int, err error) {
	start := bytes.Index(buf, startCode)
	if start < 0 {
		// Keep a trailing 0x00, it may be the first half of a start code.
		if n := len(buf); n > 0 && buf[n-1] == StartCode1 {
			return Frame{}, n - 1, errIncomplete
		}
		return Frame{}, len(buf), errIncomplete
	}

	off := start + len(startCode)
	if off+2 > len(buf) {
		return Frame{}, start, errIncomplete
	}

	dataLen := int(buf[off])
	if byte(dataLen)+buf[off+1] != 0 {
		return Frame{}, off, fmt.Errorf("%w: length checksum", i2cpair.ErrFrameCorrupted)
	}
	if dataLen < headerLen {
		return Frame{}, off, fmt.Errorf("%w: length %d below header size", i2cpair.ErrFrameCorrupted, dataLen)
	}

	dataStart := off + 2
	end := dataStart + dataLen + 2 // DCS and postamble
	if end > len(buf) {
		return Frame{}, start, errIncomplete
	}

	data := buf[dataStart : dataStart+dataLen]
	if CalculateChecksum(data)+buf[dataStart+dataLen] != 0 {
		return Frame{}, end, i2cpair.ErrChecksumMismatch
	}
	if buf[end-1] != Postamble {
		return Frame{}, end, fmt.Errorf("%w: missing postamble", i2cpair.ErrFrameCorrupted)
	}

	f = Frame{
		TFI:     data[0],
		Cmd:     data[1],
		Addr:    data[2],
		Seq:     data[3],
		Payload: append([]byte(nil), data[headerLen:]...),
	}
	return f, end, nil
}

// IsIncomplete reports whether err means Parse needs more bytes.
func IsIncomplete(err error) bool {
	return errors.Is(err, errIncomplete)
}
