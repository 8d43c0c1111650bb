/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	estateerrors "github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/result"
	"github.com/suparena/estatesync/stream"
)

// envelopeView is the printed form of an envelope.
type envelopeView struct {
	Kind    string `yaml:"kind"`
	Message string `yaml:"message,omitempty"`
	Value   any    `yaml:"value,omitempty"`
}

func newEncoder(w io.Writer) *yaml.Encoder {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return enc
}

// encodeEnvelope writes env as the next document of enc. Records are printed
// in their stored form through toDoc.
func encodeEnvelope[T any](enc *yaml.Encoder, env result.Envelope[T], toDoc func(T) any) error {
	view := envelopeView{Kind: env.Kind().String(), Message: env.Message()}
	if v, ok := env.Value(); ok {
		view.Value = toDoc(v)
	}
	return enc.Encode(view)
}

// printEnvelope writes env as a single YAML document.
func printEnvelope[T any](w io.Writer, env result.Envelope[T], toDoc func(T) any) error {
	enc := newEncoder(w)
	if err := encodeEnvelope(enc, env, toDoc); err != nil {
		return err
	}
	return enc.Close()
}

// follow subscribes to s and prints envelopes until the stream closes, ctx
// ends, or limit envelopes were printed (0 means no limit). A Failure makes
// the command fail once the stream has closed.
func follow[T any](ctx context.Context, w io.Writer, s *stream.Stream[T], limit int, toDoc func(T) any) error {
	sub, err := s.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Cancel()

	// documents of one encoder are separated by "---"
	enc := newEncoder(w)
	defer enc.Close()

	var last result.Envelope[T]
	for n := 0; limit == 0 || n < limit; n++ {
		env, err := sub.Next(ctx)
		if errors.Is(err, estateerrors.ErrClosed) {
			break
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := encodeEnvelope(enc, env, toDoc); err != nil {
			return err
		}
		last = env
	}
	if last.IsFailure() {
		return fmt.Errorf("%s", last.Message())
	}
	return nil
}
