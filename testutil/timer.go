// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package testutil

import (
	"time"

	"github.com/pkg/errors"
)

// CheckCondition defines a func type that checks whether certain condition is satisfied
type CheckCondition func() (bool, error)

// WaitUntil waits for the condition to be met or timeout
func WaitUntil(interval time.Duration, timeout time.Duration, f CheckCondition) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		ok, err := f()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ticker.C:
		case <-timer.C:
			return errors.New("timeout")
		}
	}
}
