/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repository

import (
	"context"
	"log/slog"
	"strings"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/models"
	"github.com/suparena/estatesync/registry"
	"github.com/suparena/estatesync/result"
	"github.com/suparena/estatesync/source"
	"github.com/suparena/estatesync/stream"
)

// Settings reads and writes the application settings document.
type Settings struct {
	conn   backend.Connection
	logger *slog.Logger
	id     string
	def    models.Setting
}

// NewSettings creates the settings repository for document id, falling back to
// def until the backend has a value. A blank id uses models.DefaultSettingID.
func NewSettings(conn backend.Connection, id string, def models.Setting, logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.Default()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = models.DefaultSettingID
	}
	def.ID = id
	return &Settings{conn: conn, logger: logger, id: id, def: def}
}

// Default is the value reported before the backend answers.
func (s *Settings) Default() models.Setting {
	return s.def
}

// WatchSettings starts with the default and follows the stored document. It
// never reports Loading or Failure.
func (s *Settings) WatchSettings() *stream.Stream[models.Setting] {
	return stream.New[models.Setting](source.SettingsDocument(s.conn, s.id, s.def, s.logger), streamOptions(s.logger, "settings")...)
}

// UpdateSettings replaces the settings document.
func (s *Settings) UpdateSettings(ctx context.Context, setting models.Setting) result.Envelope[models.Setting] {
	return perform(ctx, s.logger, "update-settings", func(ctx context.Context) (models.Setting, error) {
		setting.ID = s.id
		if setting.Currency == "" {
			return models.Setting{}, errors.NewValidationError("currency", "required")
		}
		if setting.MinimumInvestment < 0 {
			return models.Setting{}, errors.NewValidationError("minimumInvestment", "must not be negative")
		}
		if err := s.conn.WriteOnce(ctx, backend.Doc(registry.Settings, s.id), setting.ToDocument()); err != nil {
			return models.Setting{}, err
		}
		return setting, nil
	})
}
