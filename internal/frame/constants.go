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

// Package frame implements the checksummed frame format the serial bridge
// uses to carry bus transactions between two processes.
//
// Layout: 00 00 FF LEN LCS TFI CMD ADDR SEQ PAYLOAD... DCS 00
//
// LEN counts TFI through the end of PAYLOAD, LCS makes LEN+LCS zero mod 256,
// and DCS makes the sum of TFI through DCS zero mod 256. A reply carries the
// SEQ of the request it answers.
package frame

// Transport frame identifiers
const (
	FromController = 0xC4 // Controller to peripheral
	FromPeripheral = 0xC5 // Peripheral to controller
)

// Frame markers
const (
	Preamble   = 0x00 // Frame preamble byte
	StartCode1 = 0x00 // Start code byte 1
	StartCode2 = 0xFF // Start code byte 2
	Postamble  = 0x00 // Frame postamble byte
)

// Commands
const (
	CmdWrite       = 0x10 // Payload is the data written by the controller
	CmdWriteStatus = 0x11 // Payload is a single i2cpair.Status byte
	CmdRequest     = 0x12 // Payload is a single maximum length byte
	CmdRequestData = 0x13 // Payload is the peripheral's reply
	CmdNACK        = 0x14 // Payload is a single i2cpair.Status byte
)

// Size limits
const (
	headerLen      = 4   // TFI + CMD + ADDR + SEQ
	MaxDataLength  = 255 // Largest LEN value
	MaxPayload     = MaxDataLength - headerLen
	overheadLength = 7 // Preamble, start code, LEN, LCS, DCS, postamble
	MinFrameLength = overheadLength + headerLen
)
