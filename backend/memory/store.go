/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process, push-based implementation of
// backend.Connection for tests and offline demos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
)

// Store keeps documents in memory and pushes a fresh snapshot to every live
// subscription affected by a write. Listener calls happen on one goroutine per
// subscription, in order, never on the writer's goroutine.
type Store struct {
	mu           sync.RWMutex
	collections  map[string]map[string]map[string]any
	subs         map[uint64]*subscription
	nextSub      uint64
	fetchErr     error
	writeErr     error
	deleteErr    error
	subscribeErr error
	now          func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[uint64]*subscription),
		now:         time.Now,
	}
}

// WithFetchError makes FetchOnce return err
func (s *Store) WithFetchError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr = err
	return s
}

// WithWriteError makes WriteOnce and UpdateOnce return err
func (s *Store) WithWriteError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
	return s
}

// WithDeleteError makes DeleteOnce return err
func (s *Store) WithDeleteError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
	return s
}

// WithSubscribeError makes Subscribe fail at registration
func (s *Store) WithSubscribeError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribeErr = err
	return s
}

// Subscribe registers listener on target and queues the current state as the
// first push. Cancelling ctx or the returned handle detaches the listener.
func (s *Store) Subscribe(ctx context.Context, target backend.Target, listener backend.Listener) (backend.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if target.Collection == "" {
		return nil, errors.NewValidationError("collection", "required")
	}

	s.mu.Lock()
	if s.subscribeErr != nil {
		err := s.subscribeErr
		s.mu.Unlock()
		return nil, err
	}
	s.nextSub++
	sub := newSubscription(s.nextSub, target, listener)
	s.subs[sub.id] = sub
	sub.enqueue(delivery{snap: s.snapshotLocked(target)})
	s.mu.Unlock()

	go sub.run()

	handle := backend.NewOnceHandle(func() { s.unsubscribe(sub.id) })
	stop := context.AfterFunc(ctx, handle.Cancel)
	return backend.HandleFunc(func() {
		stop()
		handle.Cancel()
	}), nil
}

// FetchOnce returns the current state of target.
func (s *Store) FetchOnce(ctx context.Context, target backend.Target) (*backend.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.snapshotLocked(target), nil
}

// WriteOnce creates or replaces a document.
func (s *Store) WriteOnce(ctx context.Context, target backend.Target, doc backend.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !target.IsDocument() {
		return errors.NewValidationError("target", "write needs a document id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.putLocked(target.Collection, target.DocumentID, backend.CloneData(doc.Data))
	return nil
}

// UpdateOnce merges fields into an existing document.
func (s *Store) UpdateOnce(ctx context.Context, target backend.Target, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !target.IsDocument() {
		return errors.NewValidationError("target", "update needs a document id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	current, ok := s.collections[target.Collection][target.DocumentID]
	if !ok {
		return errors.NewNotFoundError(target.Collection, target.DocumentID)
	}
	merged := backend.CloneData(current)
	for k, v := range fields {
		merged[k] = v
	}
	s.putLocked(target.Collection, target.DocumentID, merged)
	return nil
}

// DeleteOnce removes a document.
func (s *Store) DeleteOnce(ctx context.Context, target backend.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !target.IsDocument() {
		return errors.NewValidationError("target", "delete needs a document id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	docs := s.collections[target.Collection]
	old, ok := docs[target.DocumentID]
	if !ok {
		return errors.NewNotFoundError(target.Collection, target.DocumentID)
	}
	delete(docs, target.DocumentID)
	s.notifyLocked(target.Collection, target.DocumentID, old, nil)
	return nil
}

// Fail pushes err to every live subscription on exactly target.
func (s *Store) Fail(target backend.Target, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.target.Collection == target.Collection && sub.target.DocumentID == target.DocumentID {
			sub.enqueue(delivery{err: err})
		}
	}
}

// Seed writes documents directly, notifying subscribers like a remote change would.
func (s *Store) Seed(collection string, docs ...backend.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		s.putLocked(collection, doc.ID, backend.CloneData(doc.Data))
	}
}

// ActiveSubscriptions returns the number of registrations not yet cancelled.
func (s *Store) ActiveSubscriptions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Count returns the number of documents in a collection.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Get returns a copy of a stored document payload.
func (s *Store) Get(collection, id string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][id]
	if !ok {
		return nil, false
	}
	return backend.CloneData(data), true
}

func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	sub, ok := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()
	if ok {
		sub.close()
	}
}

func (s *Store) putLocked(collection, id string, data map[string]any) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		s.collections[collection] = docs
	}
	old := docs[id]
	docs[id] = data
	s.notifyLocked(collection, id, old, data)
}

// notifyLocked pushes a snapshot to every subscription whose target covered
// the document before or after the change.
func (s *Store) notifyLocked(collection, id string, before, after map[string]any) {
	for _, sub := range s.subs {
		t := sub.target
		if t.Collection != collection {
			continue
		}
		if (before != nil && t.Matches(id, before)) || (after != nil && t.Matches(id, after)) {
			sub.enqueue(delivery{snap: s.snapshotLocked(t)})
		}
	}
}

func (s *Store) snapshotLocked(target backend.Target) *backend.Snapshot {
	snap := &backend.Snapshot{Target: target, At: s.now()}
	docs := s.collections[target.Collection]
	if target.IsDocument() {
		if data, ok := docs[target.DocumentID]; ok {
			snap.Documents = []backend.Document{{ID: target.DocumentID, Data: backend.CloneData(data)}}
		}
		return snap
	}
	ids := make([]string, 0, len(docs))
	for id, data := range docs {
		if target.Matches(id, data) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	snap.Documents = make([]backend.Document, 0, len(ids))
	for _, id := range ids {
		snap.Documents = append(snap.Documents, backend.Document{ID: id, Data: backend.CloneData(docs[id])})
	}
	return snap
}

func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("memory.Store{collections: %d, subscriptions: %d}", len(s.collections), len(s.subs))
}
