/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package stream

import "log/slog"

// Options configures a Stream.
type Options struct {
	Logger *slog.Logger // defaults to slog.Default()
	Name   string       // label used in logs and metrics
}

// Option is a functional option for configuring a Stream
type Option func(*Options)

// DefaultOptions returns default stream options
func DefaultOptions() Options {
	return Options{
		Logger: slog.Default(),
		Name:   "stream",
	}
}

// WithLogger sets the logger used for lifecycle events
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		if logger != nil {
			opts.Logger = logger
		}
	}
}

// WithName labels the stream in logs and metrics
func WithName(name string) Option {
	return func(opts *Options) {
		if name != "" {
			opts.Name = name
		}
	}
}
