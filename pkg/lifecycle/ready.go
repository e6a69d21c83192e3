// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package lifecycle

import (
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// ErrWrongState is returned when a service is started twice or stopped before it started
var ErrWrongState = errors.New("service is in wrong state")

// Readiness flags whether a service accepts requests. The zero value is not ready.
type Readiness struct {
	ready atomic.Bool
}

// TurnOn marks the service ready
func (r *Readiness) TurnOn() error {
	if !r.ready.CompareAndSwap(false, true) {
		return errors.Wrap(ErrWrongState, "already started")
	}
	return nil
}

// TurnOff marks the service stopped
func (r *Readiness) TurnOff() error {
	if !r.ready.CompareAndSwap(true, false) {
		return errors.Wrap(ErrWrongState, "not started")
	}
	return nil
}

// IsReady reports whether the service accepts requests
func (r *Readiness) IsReady() bool { return r.ready.Load() }
