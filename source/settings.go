/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/models"
	"github.com/suparena/estatesync/registry"
	"github.com/suparena/estatesync/result"
	"github.com/suparena/estatesync/stream"
)

// Settings streams the settings document. It starts with the locally known
// default and only ever emits Success: backend values replace the payload, an
// absent document falls back to the default, and push errors are logged.
type Settings struct {
	conn   backend.Connection
	id     string
	def    models.Setting
	logger *slog.Logger
}

func (s *Settings) Initial() result.Envelope[models.Setting] {
	return result.Success(s.def)
}

// Subscribe never fails: when the backend refuses the registration the
// default stays the final value and the stream completes.
func (s *Settings) Subscribe(ctx context.Context, sink stream.Sink[models.Setting]) (backend.Handle, error) {
	h, err := s.conn.Subscribe(ctx, backend.Doc(registry.Settings, s.id), func(snap *backend.Snapshot, err error) {
		if err != nil {
			s.logger.Warn("settings push failed, keeping last value", "document", s.id, "error", err)
			return
		}
		doc, ok := snap.Single()
		if !ok {
			sink.Emit(result.Success(s.def))
			return
		}
		sink.Emit(result.Success(models.DecodeSetting(doc, s.def)))
	})
	if err != nil {
		s.logger.Warn("settings subscription failed, keeping default", "document", s.id, "error", err)
		sink.Complete()
		return nil, nil
	}
	return h, nil
}

// SettingsDocument streams the settings document id, defaulting to def.
// A nil logger uses slog.Default().
func SettingsDocument(conn backend.Connection, id string, def models.Setting, logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.Default()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = models.DefaultSettingID
	}
	if def.ID == "" {
		def.ID = id
	}
	return &Settings{conn: conn, id: id, def: def, logger: logger}
}
