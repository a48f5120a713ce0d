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

// Package uart joins the two roles across a serial link.
//
// Bus is the controller's end: an i2c.Bus that tunnels every transaction as
// frames to a Responder, which replays them onto a local wire.Target.
package uart

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"go.bug.st/serial"
)

// DefaultTxTimeout bounds one bridged transaction. It exceeds the target's
// request timeout so a slow handler is reported by the far side.
const DefaultTxTimeout = 2 * time.Second

// isWindows returns true if running on Windows
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// portReadTimeout returns the serial read timeout for this platform.
func portReadTimeout() time.Duration {
	if isWindows() {
		return 100 * time.Millisecond // Windows drivers need longer
	}
	return 50 * time.Millisecond
}

// openPort opens portName at 115200 8N1 with the platform read timeout.
func openPort(portName string) (serial.Port, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(portReadTimeout()); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}
	return port, nil
}

// ListPorts returns the serial ports on this host.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

func writeAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return fmt.Errorf("UART write failed: %w", err)
		}
		data = data[n:]
	}
	return nil
}
