/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stream

import (
	"context"
	"sync/atomic"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/result"
)

// Sink receives the output of a Source. Emit returns false once the consumer
// has cancelled or the stream has completed; the value is then discarded.
// Both methods are safe to call from any goroutine.
type Sink[T any] interface {
	Emit(env result.Envelope[T]) bool
	Complete()
}

// Source registers a live listener and pushes envelopes into sink.
// The returned handle is owned by the stream and cancelled exactly once.
// A source may return a nil handle when it completed without a registration.
type Source[T any] interface {
	Subscribe(ctx context.Context, sink Sink[T]) (backend.Handle, error)
}

// Initialer lets a source replace the Loading placeholder emitted before registration.
type Initialer[T any] interface {
	Initial() result.Envelope[T]
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, sink Sink[T]) (backend.Handle, error)

func (f SourceFunc[T]) Subscribe(ctx context.Context, sink Sink[T]) (backend.Handle, error) {
	return f(ctx, sink)
}

// Stream is a cold, single-subscriber sequence of envelopes. Nothing touches the
// backend until Subscribe. Obtaining the data again needs a new Stream.
type Stream[T any] struct {
	src     Source[T]
	opts    Options
	claimed atomic.Bool
}

// New wraps src. The source is not registered until Subscribe is called.
func New[T any](src Source[T], opts ...Option) *Stream[T] {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Stream[T]{src: src, opts: options}
}

// Subscribe queues the initial envelope (Loading unless the source provides
// another), then registers the source. A registration error is delivered as a
// single Failure followed by completion. Cancelling ctx cancels the subscription.
func (s *Stream[T]) Subscribe(ctx context.Context) (*Subscription[T], error) {
	if !s.claimed.CompareAndSwap(false, true) {
		return nil, errors.ErrAlreadySubscribed
	}

	sub := newSubscription[T](s.opts)
	getInstruments().add(sub.inst.opened, s.opts.Name)

	initial := result.Loading[T]()
	if in, ok := s.src.(Initialer[T]); ok {
		initial = in.Initial()
	}
	sub.Emit(initial)

	regCtx, cancel := context.WithCancel(ctx)
	sub.bind(cancel)
	sub.bindStop(context.AfterFunc(ctx, sub.Cancel))

	handle, err := s.src.Subscribe(regCtx, sub)
	if err != nil {
		s.opts.Logger.Warn("stream registration failed", "stream", s.opts.Name, "error", err)
		sub.Emit(result.Failure[T](err.Error()))
		sub.Complete()
		if handle != nil {
			sub.attach(handle)
		}
		return sub, nil
	}
	sub.attach(handle)

	s.opts.Logger.Debug("stream subscribed", "stream", s.opts.Name)
	return sub, nil
}
