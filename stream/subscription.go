/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stream

import (
	"context"
	"sync"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/result"
)

// Subscription is the consumer side of a Stream. It implements Sink for the source.
//
// Emit, Complete and Cancel are serialized by one mutex: once Cancel returns,
// Next never yields another value and late emissions are discarded.
type Subscription[T any] struct {
	opts Options
	inst *instruments

	mu        sync.Mutex
	queue     []result.Envelope[T]
	cancelled bool
	completed bool
	released  bool
	handle    backend.Handle

	notify    chan struct{}
	done      chan struct{}
	cancelCtx context.CancelFunc
	stopAfter func() bool
}

func newSubscription[T any](opts Options) *Subscription[T] {
	return &Subscription[T]{
		opts:   opts,
		inst:   getInstruments(),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Emit queues env for the consumer. Values are delivered in arrival order
// without coalescing. It never blocks the calling backend goroutine.
func (s *Subscription[T]) Emit(env result.Envelope[T]) bool {
	s.mu.Lock()
	if s.cancelled || s.completed {
		s.mu.Unlock()
		s.inst.add(s.inst.discarded, s.opts.Name)
		return false
	}
	s.queue = append(s.queue, env)
	s.mu.Unlock()

	s.inst.add(s.inst.emitted, s.opts.Name)
	if env.IsFailure() {
		s.inst.add(s.inst.failures, s.opts.Name)
	}
	s.signal()
	return true
}

// Complete marks the remote feed as permanently ended. Values already queued
// are still delivered; the subscription handle is released immediately.
func (s *Subscription[T]) Complete() {
	s.mu.Lock()
	if s.cancelled || s.completed {
		s.mu.Unlock()
		return
	}
	s.completed = true
	s.mu.Unlock()

	s.signal()
	s.release()
}

// Cancel stops the subscription. It is idempotent. Queued values are dropped and
// the handle is cancelled exactly once; backend detachment may finish afterwards.
func (s *Subscription[T]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.queue = nil
	s.mu.Unlock()

	s.inst.add(s.inst.cancelled, s.opts.Name)
	s.opts.Logger.Debug("stream cancelled", "stream", s.opts.Name)
	s.signal()
	s.release()
}

// Next blocks until the next envelope is available. It returns errors.ErrClosed
// after Cancel, or once a completed stream has been drained, and ctx.Err() when
// ctx ends first.
func (s *Subscription[T]) Next(ctx context.Context) (result.Envelope[T], error) {
	var zero result.Envelope[T]
	for {
		s.mu.Lock()
		if s.cancelled {
			s.mu.Unlock()
			return zero, errors.ErrClosed
		}
		if len(s.queue) > 0 {
			env := s.queue[0]
			s.queue[0] = zero
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return env, nil
		}
		if s.completed {
			s.mu.Unlock()
			return zero, errors.ErrClosed
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-s.notify:
		}
	}
}

// Collect reads envelopes until the subscription closes or ctx ends.
func (s *Subscription[T]) Collect(ctx context.Context) ([]result.Envelope[T], error) {
	var out []result.Envelope[T]
	for {
		env, err := s.Next(ctx)
		if err == errors.ErrClosed {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, env)
	}
}

// Done is closed once the source is detached, by cancellation or completion.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Cancelled reports whether the consumer cancelled the subscription.
func (s *Subscription[T]) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

func (s *Subscription[T]) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// attach stores the source's handle, or cancels it at once when the
// subscription was already released while the source was registering.
func (s *Subscription[T]) attach(h backend.Handle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		h.Cancel()
		return
	}
	s.handle = h
	s.mu.Unlock()
}

func (s *Subscription[T]) bind(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelCtx = cancel
}

// bindStop records the ctx watcher. AfterFunc may already have fired, in which
// case the watcher is stopped right away.
func (s *Subscription[T]) bindStop(stop func() bool) {
	s.mu.Lock()
	released := s.released
	if !released {
		s.stopAfter = stop
	}
	s.mu.Unlock()
	if released {
		stop()
	}
}

func (s *Subscription[T]) release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	h, cancel, stop := s.handle, s.cancelCtx, s.stopAfter
	s.handle, s.cancelCtx, s.stopAfter = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stop != nil {
		stop()
	}
	if h != nil {
		h.Cancel()
	}
	close(s.done)
}
