// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package routine

import (
	"context"
	"time"

	"github.com/facebookgo/clock"

	"github.com/dbpunk-labs/db3/pkg/lifecycle"
)

var _ lifecycle.StartStopper = (*RecurringTask)(nil)

type (
	// Task is the function run on every tick
	Task func()

	// RecurringTaskOption is option to RecurringTask.
	RecurringTaskOption interface {
		SetRecurringTaskOption(*RecurringTask)
	}

	// RecurringTask represents a recurring task
	RecurringTask struct {
		t        Task
		interval time.Duration
		ticker   *clock.Ticker
		done     chan struct{}
		clock    clock.Clock
	}

	clockOption struct{ c clock.Clock }
)

// WithClock sets the clock the task ticks on
func WithClock(c clock.Clock) RecurringTaskOption {
	return &clockOption{c}
}

func (o *clockOption) SetRecurringTaskOption(t *RecurringTask) { t.clock = o.c }

// NewRecurringTask creates an instance of RecurringTask
func NewRecurringTask(t Task, i time.Duration, ops ...RecurringTaskOption) *RecurringTask {
	rt := &RecurringTask{
		t:        t,
		interval: i,
		done:     make(chan struct{}),
		clock:    clock.New(),
	}
	for _, opt := range ops {
		opt.SetRecurringTaskOption(rt)
	}
	return rt
}

// Start starts the timer
func (t *RecurringTask) Start(_ context.Context) error {
	t.ticker = t.clock.Ticker(t.interval)
	ready := make(chan struct{})
	go func() {
		close(ready)
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				t.t()
			}
		}
	}()

	<-ready
	return nil
}

// Stop stops the timer. It does not wait for a running tick.
func (t *RecurringTask) Stop(_ context.Context) error {
	if t.ticker == nil {
		return nil
	}
	t.ticker.Stop()
	close(t.done)
	t.ticker = nil
	return nil
}
