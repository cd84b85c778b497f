// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"context"
	"time"
)

const defaultLoopQueue = 64

// Loop runs posted functions one at a time on a single goroutine.
type Loop struct {
	work chan func()
	done chan struct{}
}

// NewLoop creates a loop. Posted work waits until Run is called.
func NewLoop() *Loop {
	return &Loop{
		work: make(chan func(), defaultLoopQueue),
		done: make(chan struct{}),
	}
}

// Post queues fn. It returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.work <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for its result.
func (l *Loop) Call(fn func() error) error {
	result := make(chan error, 1)
	if !l.Post(func() { result <- fn() }) {
		return ErrLoopStopped
	}
	select {
	case err := <-result:
		return err
	case <-l.done:
		return ErrLoopStopped
	}
}

// Run executes posted work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.work:
			fn()
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Every posts fn immediately and then once per interval until ctx is
// cancelled or the loop stops.
func (l *Loop) Every(ctx context.Context, interval time.Duration, fn func()) {
	if !l.Post(fn) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-ticker.C:
			if !l.Post(fn) {
				return
			}
		}
	}
}
