/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package source

import (
	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/models"
	"github.com/suparena/estatesync/registry"
)

// UserByID streams one user profile.
func UserByID(conn backend.Connection, id string) *Document[models.User] {
	return NewDocument(conn, registry.Users, id, models.DecodeUser)
}

// Users streams user profiles, optionally filtered (for example by role).
func Users(conn backend.Connection, filter *backend.Filter) *Collection[models.User] {
	return NewCollection(conn, registry.Users, filter, models.DecodeUser)
}

// PropertyByID streams one property listing.
func PropertyByID(conn backend.Connection, id string) *Document[models.Property] {
	return NewDocument(conn, registry.Properties, id, models.DecodeProperty)
}

// Properties streams property listings, optionally filtered.
func Properties(conn backend.Connection, filter *backend.Filter) *Collection[models.Property] {
	return NewCollection(conn, registry.Properties, filter, models.DecodeProperty)
}
