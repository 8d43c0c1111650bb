/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package source

import (
	"context"
	"strings"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/result"
	"github.com/suparena/estatesync/stream"
)

// Document is a by-id source: one live registration on one document.
// Each push becomes Success(*T), or Success(nil) when the document is absent.
type Document[T any] struct {
	conn       backend.Connection
	collection string
	id         string
	decode     func(backend.Document) T
}

// NewDocument builds a by-id source over collection.
func NewDocument[T any](conn backend.Connection, collection, id string, decode func(backend.Document) T) *Document[T] {
	return &Document[T]{conn: conn, collection: collection, id: strings.TrimSpace(id), decode: decode}
}

// Initial is Success(nil) for a blank id, which completes without a backend call.
func (d *Document[T]) Initial() result.Envelope[*T] {
	if d.id == "" {
		return result.Success[*T](nil)
	}
	return result.Loading[*T]()
}

func (d *Document[T]) Subscribe(ctx context.Context, sink stream.Sink[*T]) (backend.Handle, error) {
	if d.id == "" {
		sink.Complete()
		return nil, nil
	}
	return d.conn.Subscribe(ctx, backend.Doc(d.collection, d.id), func(snap *backend.Snapshot, err error) {
		if err != nil {
			sink.Emit(result.Failure[*T](err.Error()))
			return
		}
		doc, ok := snap.Single()
		if !ok {
			sink.Emit(result.Success[*T](nil))
			return
		}
		v := d.decode(doc)
		sink.Emit(result.Success(&v))
	})
}

// Collection is a source over a collection, optionally filtered. Each push of
// N documents becomes one Success holding N records.
type Collection[T any] struct {
	conn   backend.Connection
	target backend.Target
	decode func(backend.Document) T
}

// NewCollection builds a collection source. A nil filter selects every document.
func NewCollection[T any](conn backend.Connection, collection string, filter *backend.Filter, decode func(backend.Document) T) *Collection[T] {
	return &Collection[T]{conn: conn, target: backend.Collection(collection, filter), decode: decode}
}

func (c *Collection[T]) Subscribe(ctx context.Context, sink stream.Sink[[]T]) (backend.Handle, error) {
	return c.conn.Subscribe(ctx, c.target, func(snap *backend.Snapshot, err error) {
		if err != nil {
			sink.Emit(result.Failure[[]T](err.Error()))
			return
		}
		records := make([]T, 0, len(snap.Documents))
		for _, doc := range snap.Documents {
			records = append(records, c.decode(doc))
		}
		sink.Emit(result.Success(records))
	})
}

// Once runs fn a single time and emits its terminal envelope. fn's context is
// cancelled when the subscription is cancelled.
type Once[T any] struct {
	fn func(ctx context.Context) result.Envelope[T]
}

// NewOnce wraps a one-shot operation as a source.
func NewOnce[T any](fn func(ctx context.Context) result.Envelope[T]) *Once[T] {
	return &Once[T]{fn: fn}
}

func (o *Once[T]) Subscribe(ctx context.Context, sink stream.Sink[T]) (backend.Handle, error) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		env := o.fn(ctx)
		if ctx.Err() != nil {
			return
		}
		sink.Emit(env)
		sink.Complete()
	}()
	return backend.NewOnceHandle(cancel), nil
}
