/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/estatesync/auth"
	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/models"
	"github.com/suparena/estatesync/registry"
	"github.com/suparena/estatesync/result"
	"github.com/suparena/estatesync/source"
	"github.com/suparena/estatesync/stream"
)

// RegisterInput is what a new account provides.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Auth composes authentication with the profile records in the users collection.
type Auth struct {
	conn   backend.Connection
	authn  auth.Authenticator
	logger *slog.Logger
	now    func() time.Time
}

// NewAuth creates the auth repository.
func NewAuth(conn backend.Connection, authn auth.Authenticator, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{conn: conn, authn: authn, logger: logger, now: time.Now}
}

// Login streams Loading followed by the signed-in profile or a Failure.
func (a *Auth) Login(email, password string) *stream.Stream[*models.User] {
	return stream.New[*models.User](source.NewOnce(func(ctx context.Context) result.Envelope[*models.User] {
		return perform(ctx, a.logger, "login", func(ctx context.Context) (*models.User, error) {
			return a.SignIn(ctx, email, password)
		})
	}), streamOptions(a.logger, "login")...)
}

// Register streams Loading followed by the new profile or a Failure.
func (a *Auth) Register(input RegisterInput) *stream.Stream[*models.User] {
	return stream.New[*models.User](source.NewOnce(func(ctx context.Context) result.Envelope[*models.User] {
		return perform(ctx, a.logger, "register", func(ctx context.Context) (*models.User, error) {
			return a.SignUp(ctx, input)
		})
	}), streamOptions(a.logger, "register")...)
}

// SignIn authenticates and then reads the profile once. Without a readable
// profile the sign-in fails and the session is dropped.
func (a *Auth) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	uid, err := a.authn.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.loadProfile(ctx, uid)
}

// SignUp creates the account and its investor profile, then reads the profile
// back like a sign-in does.
func (a *Auth) SignUp(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "required")
	}

	uid, err := a.authn.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	profile := models.User{
		ID:          uid,
		Name:        name,
		Email:       auth.NormalizeEmail(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Role:        models.RoleInvestor,
		Investments: []string{},
		CreatedAt:   strfmt.DateTime(a.now().UTC().Truncate(time.Millisecond)),
	}
	if err := a.conn.WriteOnce(ctx, backend.Doc(registry.Users, uid), profile.ToDocument()); err != nil {
		a.dropSession(ctx)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	a.logger.Info("profile created", "uid", uid)
	return a.loadProfile(ctx, uid)
}

func (a *Auth) loadProfile(ctx context.Context, uid string) (*models.User, error) {
	doc, ok, err := fetchDocument(ctx, a.conn, registry.Users, uid)
	if err != nil {
		a.dropSession(ctx)
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if !ok {
		a.dropSession(ctx)
		a.logger.Warn("authenticated account has no profile", "uid", uid)
		return nil, errors.ErrProfileMissing
	}
	u := models.DecodeUser(doc)
	return &u, nil
}

func (a *Auth) dropSession(ctx context.Context) {
	if err := a.authn.SignOut(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warn("sign-out after failed login", "error", err)
	}
}

// Logout signs the current account out.
func (a *Auth) Logout(ctx context.Context) error {
	return a.authn.SignOut(ctx)
}

// CurrentUID is the signed-in account id, or "".
func (a *Auth) CurrentUID() string {
	return a.authn.CurrentUID()
}

// WatchCurrentUser follows the profile of the account signed in when the
// stream is created. Signed out, it emits Success(nil) and completes.
func (a *Auth) WatchCurrentUser() *stream.Stream[*models.User] {
	return stream.New[*models.User](source.UserByID(a.conn, a.authn.CurrentUID()), streamOptions(a.logger, "current-user")...)
}

// UpdateProfile changes the editable fields of the signed-in user's profile.
// Role, balance and investments are left untouched.
func (a *Auth) UpdateProfile(ctx context.Context, user models.User) result.Envelope[models.User] {
	return perform(ctx, a.logger, "update-profile", func(ctx context.Context) (models.User, error) {
		uid := a.authn.CurrentUID()
		if uid == "" {
			return models.User{}, errors.ErrUnauthenticated
		}
		if user.ID != "" && user.ID != uid {
			return models.User{}, errors.NewValidationError("id", "can only update the signed-in profile")
		}
		if strings.TrimSpace(user.Name) == "" {
			return models.User{}, errors.NewValidationError("name", "required")
		}
		err := a.conn.UpdateOnce(ctx, backend.Doc(registry.Users, uid), map[string]any{
			"name":      strings.TrimSpace(user.Name),
			"phone":     strings.TrimSpace(user.Phone),
			"avatarUrl": user.AvatarURL,
		})
		if err != nil {
			return models.User{}, err
		}
		doc, ok, err := fetchDocument(ctx, a.conn, registry.Users, uid)
		if err != nil {
			return models.User{}, err
		}
		if !ok {
			return models.User{}, errors.ErrProfileMissing
		}
		return models.DecodeUser(doc), nil
	})
}
