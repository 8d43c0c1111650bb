/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package result

import "fmt"

// Kind identifies which variant an Envelope holds.
type Kind uint8

const (
	KindIdle Kind = iota
	KindLoading
	KindSuccess
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "Idle"
	case KindLoading:
		return "Loading"
	case KindSuccess:
		return "Success"
	case KindFailure:
		return "Failure"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// defaultFailureMessage replaces an empty failure message.
const defaultFailureMessage = "unknown error"

// Envelope is the uniform output of every synchronized stream and write operation.
// Exactly one variant is active. The zero value is Idle.
type Envelope[T any] struct {
	kind    Kind
	value   T
	message string
}

// Idle returns the Idle variant.
func Idle[T any]() Envelope[T] {
	return Envelope[T]{kind: KindIdle}
}

// Loading returns the Loading placeholder.
func Loading[T any]() Envelope[T] {
	return Envelope[T]{kind: KindLoading}
}

// Success wraps a decoded payload.
func Success[T any](value T) Envelope[T] {
	return Envelope[T]{kind: KindSuccess, value: value}
}

// Failure carries a human-readable message. An empty message is replaced so
// that a Failure is never blank.
func Failure[T any](message string) Envelope[T] {
	if message == "" {
		message = defaultFailureMessage
	}
	return Envelope[T]{kind: KindFailure, message: message}
}

// FromError maps err to a Failure using its text, or to Success(value) when err is nil.
func FromError[T any](value T, err error) Envelope[T] {
	if err != nil {
		return Failure[T](err.Error())
	}
	return Success(value)
}

func (e Envelope[T]) Kind() Kind { return e.kind }

func (e Envelope[T]) IsIdle() bool { return e.kind == KindIdle }
func (e Envelope[T]) IsLoading() bool { return e.kind == KindLoading }
func (e Envelope[T]) IsSuccess() bool { return e.kind == KindSuccess }
func (e Envelope[T]) IsFailure() bool { return e.kind == KindFailure }

// IsTerminal reports whether the envelope is an outcome (Success or Failure)
// rather than a placeholder.
func (e Envelope[T]) IsTerminal() bool {
	return e.kind == KindSuccess || e.kind == KindFailure
}

// Value returns the Success payload. ok is false for every other variant.
func (e Envelope[T]) Value() (value T, ok bool) {
	if e.kind != KindSuccess {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Message returns the Failure message, or "" for every other variant.
func (e Envelope[T]) Message() string {
	if e.kind != KindFailure {
		return ""
	}
	return e.message
}

func (e Envelope[T]) String() string {
	switch e.kind {
	case KindSuccess:
		return fmt.Sprintf("Success(%+v)", e.value)
	case KindFailure:
		return fmt.Sprintf("Failure(%q)", e.message)
	default:
		return e.kind.String()
	}
}

// Map transforms the payload of a Success. Other variants pass through with
// their message intact.
func Map[T, U any](e Envelope[T], fn func(T) U) Envelope[U] {
	switch e.kind {
	case KindSuccess:
		return Success(fn(e.value))
	case KindFailure:
		return Failure[U](e.message)
	case KindLoading:
		return Loading[U]()
	default:
		return Idle[U]()
	}
}
