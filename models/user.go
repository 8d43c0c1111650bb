/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"slices"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/estatesync/backend"
)

// Role is the access level of a user.
type Role string

const (
	RoleInvestor Role = "investor"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleInvestor || r == RoleAdmin
}

// User is the profile record stored in the users collection.
type User struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Role        Role
	AvatarURL   string
	Investments []string // property ids
	Balance     float64
	CreatedAt   strfmt.DateTime
}

// DecodeUser converts a raw document into a User. Missing or mistyped fields
// fall back to their defaults; decoding never fails.
func DecodeUser(doc backend.Document) User {
	data := doc.Data
	role := Role(stringField(data, "role", string(RoleInvestor)))
	if !role.Valid() {
		role = RoleInvestor
	}
	return User{
		ID:          documentID(doc.ID, data),
		Name:        stringField(data, "name", ""),
		Email:       stringField(data, "email", ""),
		Phone:       stringField(data, "phone", ""),
		Role:        role,
		AvatarURL:   stringField(data, "avatarUrl", ""),
		Investments: stringsField(data, "investments"),
		Balance:     floatField(data, "balance", 0),
		CreatedAt:   timeField(data, "createdAt"),
	}
}

// ToDocument encodes the user for a write.
func (u User) ToDocument() backend.Document {
	investments := u.Investments
	if investments == nil {
		investments = []string{}
	}
	return backend.Document{
		ID: u.ID,
		Data: map[string]any{
			"id":          u.ID,
			"name":        u.Name,
			"email":       u.Email,
			"phone":       u.Phone,
			"role":        string(u.Role),
			"avatarUrl":   u.AvatarURL,
			"investments": investments,
			"balance":     u.Balance,
			"createdAt":   formatTime(u.CreatedAt),
		},
	}
}

// IsAdmin reports whether the user may use admin operations.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// WithRole returns a copy of u with the role replaced.
func (u User) WithRole(role Role) User {
	u.Investments = slices.Clone(u.Investments)
	u.Role = role
	return u
}

// Equal compares two users field by field.
func (u User) Equal(o User) bool {
	return u.ID == o.ID &&
		u.Name == o.Name &&
		u.Email == o.Email &&
		u.Phone == o.Phone &&
		u.Role == o.Role &&
		u.AvatarURL == o.AvatarURL &&
		slices.Equal(u.Investments, o.Investments) &&
		u.Balance == o.Balance &&
		sameTime(u.CreatedAt, o.CreatedAt)
}
