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
	"context"
	"fmt"
)

// RunPaired runs both halves of every selected test in one process.
//
// For each controller test, the peripheral test of the same name is started
// first on its own goroutine so its wait is armed before the controller
// touches the bus. Results are returned controller first, then peripheral.
func RunPaired(ctx context.Context, controller, peripheral *Suite, patterns []string) ([]Result, error) {
	tests, err := controller.Select(patterns)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, 2*len(tests))
	for _, ct := range tests {
		pt, ok := peripheral.Lookup(ct.Name)
		if !ok {
			results = append(results, controller.runTest(ctx, ct), Result{
				Role:  peripheral.Role(),
				Name:  ct.Name,
				Err:   fmt.Errorf("no %s test named %q", peripheral.Role(), ct.Name),
				State: StateFailed,
			})
			continue
		}

		done := make(chan Result, 1)
		go func() {
			done <- peripheral.runTest(ctx, pt)
		}()
		cr := controller.runTest(ctx, ct)
		pr := <-done
		results = append(results, cr, pr)
	}
	return results, nil
}
