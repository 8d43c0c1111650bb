/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/models"
	"github.com/suparena/estatesync/registry"
	"github.com/suparena/estatesync/result"
	"github.com/suparena/estatesync/source"
	"github.com/suparena/estatesync/stream"
)

// Admin manages users and listings.
type Admin struct {
	conn   backend.Connection
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

// NewAdmin creates the admin repository.
func NewAdmin(conn backend.Connection, logger *slog.Logger) *Admin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Admin{conn: conn, logger: logger, newID: uuid.NewString, now: time.Now}
}

// WatchUsers follows every profile.
func (a *Admin) WatchUsers() *stream.Stream[[]models.User] {
	return stream.New[[]models.User](source.Users(a.conn, nil), streamOptions(a.logger, "users")...)
}

// WatchUser follows one profile. A blank id emits Success(nil) and completes.
func (a *Admin) WatchUser(id string) *stream.Stream[*models.User] {
	return stream.New[*models.User](source.UserByID(a.conn, id), streamOptions(a.logger, "user")...)
}

// CreateProperty stores a new listing, assigning an id and creation time when
// missing. The result carries the stored listing.
func (a *Admin) CreateProperty(ctx context.Context, p models.Property) result.Envelope[models.Property] {
	return perform(ctx, a.logger, "create-property", func(ctx context.Context) (models.Property, error) {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			p.ID = a.newID()
		}
		if time.Time(p.CreatedAt).IsZero() {
			p.CreatedAt = strfmt.DateTime(a.now().UTC().Truncate(time.Millisecond))
		}
		if p.Status == "" {
			p.Status = models.StatusOpen
		}
		if p.AvailableShares == 0 {
			p.AvailableShares = p.TotalShares
		}
		if err := validateProperty(p); err != nil {
			return models.Property{}, err
		}
		if err := a.conn.WriteOnce(ctx, backend.Doc(registry.Properties, p.ID), p.ToDocument()); err != nil {
			return models.Property{}, err
		}
		a.logger.Info("property created", "id", p.ID)
		return p, nil
	})
}

// UpdateProperty replaces the fields of an existing listing, keeping its
// creation time.
func (a *Admin) UpdateProperty(ctx context.Context, p models.Property) result.Envelope[models.Property] {
	return perform(ctx, a.logger, "update-property", func(ctx context.Context) (models.Property, error) {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return models.Property{}, errors.NewValidationError("id", "required")
		}
		if err := validateProperty(p); err != nil {
			return models.Property{}, err
		}
		fields := p.ToDocument().Data
		delete(fields, "createdAt")
		if err := a.conn.UpdateOnce(ctx, backend.Doc(registry.Properties, p.ID), fields); err != nil {
			return models.Property{}, err
		}
		doc, ok, err := fetchDocument(ctx, a.conn, registry.Properties, p.ID)
		if err != nil {
			return models.Property{}, err
		}
		if !ok {
			return models.Property{}, errors.NewNotFoundError(registry.Properties, p.ID)
		}
		return models.DecodeProperty(doc), nil
	})
}

// DeleteProperty removes a listing. Success carries the deleted id.
func (a *Admin) DeleteProperty(ctx context.Context, id string) result.Envelope[string] {
	return a.deleteDocument(ctx, registry.Properties, id)
}

// DeleteUser removes a profile. The account's credentials are not touched.
func (a *Admin) DeleteUser(ctx context.Context, uid string) result.Envelope[string] {
	return a.deleteDocument(ctx, registry.Users, uid)
}

// SetUserRole changes the role of a profile. Success carries the user id.
func (a *Admin) SetUserRole(ctx context.Context, uid string, role models.Role) result.Envelope[string] {
	return perform(ctx, a.logger, "set-user-role", func(ctx context.Context) (string, error) {
		uid = strings.TrimSpace(uid)
		if uid == "" {
			return "", errors.NewValidationError("id", "required")
		}
		if !role.Valid() {
			return "", errors.NewValidationError("role", "unknown role "+string(role))
		}
		if err := a.conn.UpdateOnce(ctx, backend.Doc(registry.Users, uid), map[string]any{"role": string(role)}); err != nil {
			return "", err
		}
		a.logger.Info("user role changed", "uid", uid, "role", role)
		return uid, nil
	})
}

func (a *Admin) deleteDocument(ctx context.Context, collection, id string) result.Envelope[string] {
	return perform(ctx, a.logger, "delete-"+collection, func(ctx context.Context) (string, error) {
		id = strings.TrimSpace(id)
		if id == "" {
			return "", errors.NewValidationError("id", "required")
		}
		if err := a.conn.DeleteOnce(ctx, backend.Doc(collection, id)); err != nil {
			return "", err
		}
		a.logger.Info("document deleted", "collection", collection, "id", id)
		return id, nil
	})
}

func validateProperty(p models.Property) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return errors.NewValidationError("title", "required")
	case p.Price < 0:
		return errors.NewValidationError("price", "must not be negative")
	case p.SharePrice < 0:
		return errors.NewValidationError("sharePrice", "must not be negative")
	case p.TotalShares < 0:
		return errors.NewValidationError("totalShares", "must not be negative")
	case p.AvailableShares < 0 || p.AvailableShares > p.TotalShares:
		return errors.NewValidationError("availableShares", "must be between 0 and totalShares")
	case !p.Status.Valid():
		return errors.NewValidationError("status", "unknown status "+string(p.Status))
	}
	return nil
}
