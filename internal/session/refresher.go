// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"sync"
	"time"
)

// Ticker is the subset of *time.Ticker the refresher needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// refresher runs fn on a fixed period between Start and Stop.
//
// Each Start begins a fresh period on a new goroutine. Stop cancels the
// context passed to fn and retires the goroutine's generation, so a tick
// that was already queued never calls fn after Stop returns. Stop does not
// wait for the goroutine; Wait does.
type refresher struct {
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	fn        func(ctx context.Context)

	mu      sync.Mutex
	running bool
	gen     uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func newRefresher(interval time.Duration, newTicker func(time.Duration) Ticker, fn func(ctx context.Context)) *refresher {
	if newTicker == nil {
		newTicker = newTimeTicker
	}
	return &refresher{interval: interval, newTicker: newTicker, fn: fn}
}

// Start schedules fn and reports whether it was not already scheduled.
func (r *refresher) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return false
	}
	r.running = true
	r.gen++
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	t := r.newTicker(r.interval)
	r.wg.Add(1)
	go r.loop(ctx, r.gen, t)
	return true
}

// Stop unschedules fn and reports whether it was scheduled.
func (r *refresher) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return false
	}
	r.running = false
	r.cancel()
	r.cancel = nil
	return true
}

// Running reports whether fn is currently scheduled.
func (r *refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Wait blocks until every goroutine started by Start has exited.
func (r *refresher) Wait() {
	r.wg.Wait()
}

func (r *refresher) loop(ctx context.Context, gen uint64, t Ticker) {
	defer r.wg.Done()
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if !r.current(gen) {
				return
			}
			r.fn(ctx)
		}
	}
}

func (r *refresher) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running && r.gen == gen
}
