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

import (
	"sync"
)

// MockController records controller calls and replays canned replies.
type MockController struct {
	writes       [][]byte
	reply        []byte
	rx           []byte
	replyCount   int
	rxPos        int
	beginCalls   int
	endCalls     int
	requestCalls int
	mu           sync.Mutex
	beginErr     error
	status       Status
	txAddr       Address
	overrideCnt  bool
}

// NewMockController returns a mock whose transmissions succeed and whose
// reads return nothing.
func NewMockController() *MockController {
	return &MockController{}
}

// Begin implements Controller.
func (m *MockController) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beginCalls++
	return m.beginErr
}

// BeginTransmission implements Controller.
func (m *MockController) BeginTransmission(addr Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txAddr = addr
}

// Write implements Controller. Every call is recorded separately.
func (m *MockController) Write(p []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, append([]byte(nil), p...))
	return len(p)
}

// EndTransmission implements Controller.
func (m *MockController) EndTransmission() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endCalls++
	return m.status
}

// RequestFrom implements Controller. The configured reply is truncated to maxLen.
func (m *MockController) RequestFrom(_ Address, maxLen int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCalls++
	n := len(m.reply)
	if n > maxLen {
		n = maxLen
	}
	m.rx = append(m.rx[:0], m.reply[:n]...)
	m.rxPos = 0
	if m.overrideCnt {
		return m.replyCount
	}
	return n
}

// Available implements ByteSource.
func (m *MockController) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rx) - m.rxPos
}

// ReadByte implements ByteSource.
func (m *MockController) ReadByte() (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rxPos >= len(m.rx) {
		return 0, ErrNoData
	}
	b := m.rx[m.rxPos]
	m.rxPos++
	return b, nil
}

// Test helper methods

// SetStatus sets the status EndTransmission returns.
func (m *MockController) SetStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// SetBeginError makes Begin fail.
func (m *MockController) SetBeginError(err error) {
	m.mu.Lock()
	m.beginErr = err
	m.mu.Unlock()
}

// SetReply sets the bytes RequestFrom makes available.
func (m *MockController) SetReply(b []byte) {
	m.mu.Lock()
	m.reply = append([]byte(nil), b...)
	m.mu.Unlock()
}

// SetReplyCount overrides the count RequestFrom returns.
func (m *MockController) SetReplyCount(n int) {
	m.mu.Lock()
	m.replyCount = n
	m.overrideCnt = true
	m.mu.Unlock()
}

// Writes returns a copy of every Write call's bytes.
func (m *MockController) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// TxAddress returns the address of the last BeginTransmission.
func (m *MockController) TxAddress() Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txAddr
}

// CallCounts returns how often Begin, EndTransmission and RequestFrom ran.
func (m *MockController) CallCounts() (begin, end, request int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beginCalls, m.endCalls, m.requestCalls
}

// MockPeripheral lets tests fire handlers directly, the way the bus would.
//
// Deliver and Request invoke the handlers on the caller's goroutine; wrap
// them in a goroutine to model asynchronous dispatch.
type MockPeripheral struct {
	onReceive ReceiveHandler
	onRequest RequestHandler
	rx        []byte
	tx        []byte
	writes    []int
	rxPos     int
	mu        sync.Mutex
	beginErr  error
	addr      Address
	started   bool
}

// NewMockPeripheral returns an unstarted mock peripheral.
func NewMockPeripheral() *MockPeripheral {
	return &MockPeripheral{}
}

// Begin implements Peripheral.
func (m *MockPeripheral) Begin(addr Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beginErr != nil {
		return m.beginErr
	}
	m.addr = addr
	m.started = true
	return nil
}

// OnReceive implements Peripheral.
func (m *MockPeripheral) OnReceive(h ReceiveHandler) {
	m.mu.Lock()
	m.onReceive = h
	m.mu.Unlock()
}

// OnRequest implements Peripheral.
func (m *MockPeripheral) OnRequest(h RequestHandler) {
	m.mu.Lock()
	m.onRequest = h
	m.mu.Unlock()
}

// Available implements ByteSource.
func (m *MockPeripheral) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rx) - m.rxPos
}

// ReadByte implements ByteSource.
func (m *MockPeripheral) ReadByte() (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rxPos >= len(m.rx) {
		return 0, ErrNoData
	}
	b := m.rx[m.rxPos]
	m.rxPos++
	return b, nil
}

// Write implements Peripheral. Each call's length is recorded.
func (m *MockPeripheral) Write(p []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tx = append(m.tx, p...)
	m.writes = append(m.writes, len(p))
	return len(p)
}

// Test helper methods

// Deliver loads data as inbound bytes and runs the receive handler with hint.
func (m *MockPeripheral) Deliver(data []byte, hint int) {
	m.mu.Lock()
	m.rx = append([]byte(nil), data...)
	m.rxPos = 0
	h := m.onReceive
	m.mu.Unlock()
	if h != nil {
		h(hint)
	}
}

// Request runs the request handler and returns what it wrote.
func (m *MockPeripheral) Request() []byte {
	m.mu.Lock()
	m.tx = m.tx[:0]
	h := m.onRequest
	m.mu.Unlock()
	if h != nil {
		h()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.tx...)
}

// WriteSizes returns the length of every Write call.
func (m *MockPeripheral) WriteSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.writes...)
}

// Address returns the address passed to Begin.
func (m *MockPeripheral) Address() (Address, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr, m.started
}

// SetBeginError makes Begin fail.
func (m *MockPeripheral) SetBeginError(err error) {
	m.mu.Lock()
	m.beginErr = err
	m.mu.Unlock()
}

var (
	_ Controller = (*MockController)(nil)
	_ Peripheral = (*MockPeripheral)(nil)
)
