/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory

import (
	"sync"

	"github.com/suparena/estatesync/backend"
)

type delivery struct {
	snap *backend.Snapshot
	err  error
}

// subscription delivers queued pushes to its listener on its own goroutine.
type subscription struct {
	id       uint64
	target   backend.Target
	listener backend.Listener

	mu     sync.Mutex
	queue  []delivery
	closed bool
	wake   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

func newSubscription(id uint64, target backend.Target, listener backend.Listener) *subscription {
	return &subscription{
		id:       id,
		target:   target,
		listener: listener,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

func (s *subscription) enqueue(d delivery) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, d)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.stop)
	})
}

func (s *subscription) run() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if s.closed || len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			d := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			s.listener(d.snap, d.err)
		}
	}
}
