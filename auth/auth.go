/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package auth authenticates accounts against credentials stored in the
// document backend.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/registry"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

// Authenticator signs accounts in and out. Implementations track the current uid.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context) error
	CurrentUID() string
}

// Options tune a Service.
type Options struct {
	Logger *slog.Logger
	// Cost is the bcrypt cost for new hashes
	Cost  int
	NewID func() string
}

// Option configures a Service.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithCost sets the bcrypt cost.
func WithCost(cost int) Option {
	return func(o *Options) {
		o.Cost = cost
	}
}

// WithIDGenerator replaces uuid generation of account ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *Options) {
		if newID != nil {
			o.NewID = newID
		}
	}
}

// Service is an Authenticator keeping bcrypt credentials in the credentials
// collection, one document per normalized email.
type Service struct {
	conn backend.Connection
	opts Options

	mu  sync.RWMutex
	uid string
}

var _ Authenticator = (*Service)(nil)

// NewService creates a Service on conn.
func NewService(conn backend.Connection, opts ...Option) *Service {
	options := Options{
		Logger: slog.Default(),
		Cost:   bcrypt.DefaultCost,
		NewID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{conn: conn, opts: options}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn checks the password of email and makes its account current.
// Unknown emails and wrong passwords both return errors.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", errors.ErrInvalidCredentials
	}

	snap, err := s.conn.FetchOnce(ctx, backend.Doc(registry.Credentials, email))
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}
	doc, ok := snap.Single()
	if !ok {
		s.opts.Logger.Debug("sign-in for unknown email")
		return "", errors.ErrInvalidCredentials
	}
	hash, _ := doc.Data["passwordHash"].(string)
	uid, _ := doc.Data["uid"].(string)
	if uid == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", errors.ErrInvalidCredentials
	}

	s.setUID(uid)
	s.opts.Logger.Info("signed in", "uid", uid)
	return uid, nil
}

// SignUp creates an account for email and makes it current.
func (s *Service) SignUp(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if !strfmt.IsEmail(email) {
		return "", errors.NewValidationError("email", "must be a valid email address")
	}
	if len(password) < MinPasswordLength {
		return "", errors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	target := backend.Doc(registry.Credentials, email)
	snap, err := s.conn.FetchOnce(ctx, target)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}
	if _, exists := snap.Single(); exists {
		return "", errors.NewAlreadyExistsError(registry.Credentials, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	uid := s.opts.NewID()
	err = s.conn.WriteOnce(ctx, target, backend.Document{ID: email, Data: map[string]any{
		"uid":          uid,
		"email":        email,
		"passwordHash": string(hash),
		"createdAt":    strfmt.DateTime(time.Now().UTC()).String(),
	}})
	if err != nil {
		return "", fmt.Errorf("failed to store credentials: %w", err)
	}

	s.setUID(uid)
	s.opts.Logger.Info("account created", "uid", uid)
	return uid, nil
}

// SignOut forgets the current account.
func (s *Service) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.setUID("")
	return nil
}

// CurrentUID returns the signed-in account id, or "" when signed out.
func (s *Service) CurrentUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uid
}

func (s *Service) setUID(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uid = uid
}
