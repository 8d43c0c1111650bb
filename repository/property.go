/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repository

import (
	"context"
	"log/slog"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/models"
	"github.com/suparena/estatesync/registry"
	"github.com/suparena/estatesync/result"
	"github.com/suparena/estatesync/source"
	"github.com/suparena/estatesync/stream"
)

// Property reads listings.
type Property struct {
	conn   backend.Connection
	logger *slog.Logger
}

// NewProperty creates the property repository.
func NewProperty(conn backend.Connection, logger *slog.Logger) *Property {
	if logger == nil {
		logger = slog.Default()
	}
	return &Property{conn: conn, logger: logger}
}

// WatchProperties follows every listing, or those matching filter.
func (p *Property) WatchProperties(filter *backend.Filter) *stream.Stream[[]models.Property] {
	return stream.New[[]models.Property](source.Properties(p.conn, filter), streamOptions(p.logger, "properties")...)
}

// WatchOpenProperties follows listings still accepting investment.
func (p *Property) WatchOpenProperties() *stream.Stream[[]models.Property] {
	return p.WatchProperties(&backend.Filter{Field: "status", Value: string(models.StatusOpen)})
}

// WatchProperty follows one listing. A blank id emits Success(nil) and completes.
func (p *Property) WatchProperty(id string) *stream.Stream[*models.Property] {
	return stream.New[*models.Property](source.PropertyByID(p.conn, id), streamOptions(p.logger, "property")...)
}

// FetchProperty reads one listing once. Absent listings are Success(nil).
func (p *Property) FetchProperty(ctx context.Context, id string) result.Envelope[*models.Property] {
	return perform(ctx, p.logger, "fetch-property", func(ctx context.Context) (*models.Property, error) {
		doc, ok, err := fetchDocument(ctx, p.conn, registry.Properties, id)
		if err != nil || !ok {
			return nil, err
		}
		prop := models.DecodeProperty(doc)
		return &prop, nil
	})
}
