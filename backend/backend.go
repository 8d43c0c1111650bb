/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package backend

import (
	"context"
	"sync"
	"time"
)

// Filter restricts a collection target to documents whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Target addresses either one document (DocumentID set) or a collection,
// optionally narrowed by a Filter.
type Target struct {
	Collection string
	DocumentID string
	Filter     *Filter
}

// Doc returns a single-document target.
func Doc(collection, id string) Target {
	return Target{Collection: collection, DocumentID: id}
}

// Collection returns a collection target. A nil filter selects every document.
func Collection(collection string, filter *Filter) Target {
	return Target{Collection: collection, Filter: filter}
}

// IsDocument reports whether the target addresses a single document.
func (t Target) IsDocument() bool {
	return t.DocumentID != ""
}

func (t Target) String() string {
	if t.IsDocument() {
		return t.Collection + "/" + t.DocumentID
	}
	if t.Filter != nil {
		return t.Collection + "?" + t.Filter.Field + "=" + toString(t.Filter.Value)
	}
	return t.Collection
}

// Matches reports whether a document with the given id and data belongs to the target.
func (t Target) Matches(id string, data map[string]any) bool {
	if t.IsDocument() {
		return t.DocumentID == id
	}
	if t.Filter == nil {
		return true
	}
	v, ok := data[t.Filter.Field]
	return ok && toString(v) == toString(t.Filter.Value)
}

// Document is an untyped remote payload.
type Document struct {
	ID   string
	Data map[string]any
}

// Snapshot is the state of a target at one point in time. A document target
// yields at most one Document; an absent document yields none.
type Snapshot struct {
	Target    Target
	Documents []Document
	At        time.Time
}

// Single returns the only document of a document-target snapshot.
func (s *Snapshot) Single() (Document, bool) {
	if s == nil || len(s.Documents) == 0 {
		return Document{}, false
	}
	return s.Documents[0], true
}

// Listener receives every push for a subscription. Exactly one of snap and err
// is non-nil. Listeners run on a backend-managed goroutine.
type Listener func(snap *Snapshot, err error)

// Handle is a live registration against the remote store.
// Cancel detaches the listener; calling it more than once is a no-op.
type Handle interface {
	Cancel()
}

// HandleFunc adapts a function to Handle. It does not make the function idempotent;
// wrap it with OnceHandle for that.
type HandleFunc func()

func (f HandleFunc) Cancel() { f() }

// OnceHandle guarantees the wrapped cancel function runs exactly once.
type OnceHandle struct {
	once   sync.Once
	cancel func()
}

// NewOnceHandle wraps cancel. A nil cancel is allowed.
func NewOnceHandle(cancel func()) *OnceHandle {
	return &OnceHandle{cancel: cancel}
}

func (h *OnceHandle) Cancel() {
	h.once.Do(func() {
		if h.cancel != nil {
			h.cancel()
		}
	})
}

// Connection is the backend collaborator shared by every repository.
// It is safe for concurrent use; repositories never mutate it.
type Connection interface {
	// Subscribe opens a push-based registration on target. The listener is
	// called with the current state first and again after every change.
	Subscribe(ctx context.Context, target Target, listener Listener) (Handle, error)

	// FetchOnce reads the current state of target.
	FetchOnce(ctx context.Context, target Target) (*Snapshot, error)

	// WriteOnce creates or replaces the document addressed by target.
	WriteOnce(ctx context.Context, target Target, doc Document) error

	// UpdateOnce merges fields into an existing document atomically.
	UpdateOnce(ctx context.Context, target Target, fields map[string]any) error

	// DeleteOnce removes the document addressed by target.
	DeleteOnce(ctx context.Context, target Target) error
}
