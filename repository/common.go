/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repository

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/result"
	"github.com/suparena/estatesync/stream"
)

const otelScope = "estatesync/repository"

func tracer() trace.Tracer {
	return otel.Tracer(otelScope)
}

func streamOptions(logger *slog.Logger, name string) []stream.Option {
	return []stream.Option{stream.WithLogger(logger), stream.WithName(name)}
}

// perform runs a one-shot operation under a span and folds its outcome into a
// terminal envelope.
func perform[T any](ctx context.Context, logger *slog.Logger, op string, fn func(ctx context.Context) (T, error)) result.Envelope[T] {
	ctx, span := tracer().Start(ctx, "repository."+op, trace.WithAttributes(attribute.String("estatesync.op", op)))
	defer span.End()

	v, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("operation failed", "op", op, "error", err)
	}
	return result.FromError(v, err)
}

// fetchDocument reads one document. A blank id or an absent document yields
// ok == false without error.
func fetchDocument(ctx context.Context, conn backend.Connection, collection, id string) (backend.Document, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return backend.Document{}, false, nil
	}
	snap, err := conn.FetchOnce(ctx, backend.Doc(collection, id))
	if err != nil {
		return backend.Document{}, false, err
	}
	doc, ok := snap.Single()
	return doc, ok, nil
}
