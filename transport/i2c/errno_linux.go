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

//go:build linux

package i2c

import (
	"errors"
	"strings"

	"golang.org/x/sys/unix"
)

// nackErrnos are what i2c-dev returns when nothing acknowledges the address.
var nackErrnos = []unix.Errno{unix.EREMOTEIO, unix.ENXIO}

// isNACK reports whether err is the kernel's way of saying the transfer was
// not acknowledged. periph formats driver errors with %v, so the text is
// checked as well.
func isNACK(err error) bool {
	for _, errno := range nackErrnos {
		if errors.Is(err, errno) || strings.Contains(err.Error(), errno.Error()) {
			return true
		}
	}
	return false
}
