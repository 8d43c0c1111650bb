/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package estatesync

import (
	"log/slog"

	"github.com/suparena/estatesync/auth"
	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/models"
	"github.com/suparena/estatesync/repository"
)

// Options configure a Client.
type Options struct {
	Logger           *slog.Logger
	SettingsDocument string
	DefaultSettings  models.Setting
}

// Option configures a Client.
type Option func(*Options)

// WithLogger sets the logger shared by every repository and stream.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithSettingsDocument selects the settings document id.
func WithSettingsDocument(id string) Option {
	return func(o *Options) {
		o.SettingsDocument = id
	}
}

// WithDefaultSettings sets the settings value reported before the backend answers.
func WithDefaultSettings(s models.Setting) Option {
	return func(o *Options) {
		o.DefaultSettings = s
	}
}

// Client wires the repositories to one backend connection and one
// authenticator. Build it once and share it.
type Client struct {
	conn       backend.Connection
	authn      auth.Authenticator
	logger     *slog.Logger
	auth       *repository.Auth
	properties *repository.Property
	admin      *repository.Admin
	settings   *repository.Settings
}

// New builds a Client. A nil authenticator uses an auth.Service on conn.
func New(conn backend.Connection, authn auth.Authenticator, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, errors.NewValidationError("connection", "required")
	}
	options := Options{
		Logger:           slog.Default(),
		SettingsDocument: models.DefaultSettingID,
		DefaultSettings:  models.DefaultSetting(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if authn == nil {
		authn = auth.NewService(conn, auth.WithLogger(options.Logger))
	}

	logger := options.Logger
	return &Client{
		conn:       conn,
		authn:      authn,
		logger:     logger,
		auth:       repository.NewAuth(conn, authn, logger.With("repository", "auth")),
		properties: repository.NewProperty(conn, logger.With("repository", "property")),
		admin:      repository.NewAdmin(conn, logger.With("repository", "admin")),
		settings:   repository.NewSettings(conn, options.SettingsDocument, options.DefaultSettings, logger.With("repository", "settings")),
	}, nil
}

// Auth returns the auth repository.
func (c *Client) Auth() *repository.Auth { return c.auth }

// Properties returns the property repository.
func (c *Client) Properties() *repository.Property { return c.properties }

// Admin returns the admin repository.
func (c *Client) Admin() *repository.Admin { return c.admin }

// Settings returns the settings repository.
func (c *Client) Settings() *repository.Settings { return c.settings }

// Connection returns the backend connection.
func (c *Client) Connection() backend.Connection { return c.conn }
