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

// Message is an immutable byte sequence exchanged over the bus.
type Message string

const (
	// ControllerMessage is what the controller writes to the peripheral.
	ControllerMessage Message = "hello slave"
	// PeripheralMessage is what the peripheral answers a read request with.
	PeripheralMessage Message = "hello master"
)

// Bytes returns a fresh copy of the message bytes.
func (m Message) Bytes() []byte {
	return []byte(m)
}

// Len returns the message length in bytes, excluding any terminator.
func (m Message) Len() int {
	return len(m)
}

// Equal reports whether b holds exactly the message bytes.
func (m Message) Equal(b []byte) bool {
	return string(m) == string(b)
}
