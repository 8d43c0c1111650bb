/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import "github.com/suparena/estatesync/backend"

// DefaultSettingID is the id of the application settings document.
const DefaultSettingID = "app"

// Setting is the application-wide settings document.
type Setting struct {
	ID                   string
	Currency             string
	Language             string
	NotificationsEnabled bool
	MaintenanceMode      bool
	MinimumInvestment    float64
	SupportEmail         string
}

// DefaultSetting is the locally known value used until the backend confirms one.
func DefaultSetting() Setting {
	return Setting{
		ID:                   DefaultSettingID,
		Currency:             "USD",
		Language:             "en",
		NotificationsEnabled: true,
		MinimumInvestment:    100,
	}
}

// DecodeSetting converts a raw document into a Setting, taking missing or
// mistyped fields from def.
func DecodeSetting(doc backend.Document, def Setting) Setting {
	data := doc.Data
	id := documentID(doc.ID, data)
	if id == "" {
		id = def.ID
	}
	return Setting{
		ID:                   id,
		Currency:             stringField(data, "currency", def.Currency),
		Language:             stringField(data, "language", def.Language),
		NotificationsEnabled: boolField(data, "notificationsEnabled", def.NotificationsEnabled),
		MaintenanceMode:      boolField(data, "maintenanceMode", def.MaintenanceMode),
		MinimumInvestment:    floatField(data, "minimumInvestment", def.MinimumInvestment),
		SupportEmail:         stringField(data, "supportEmail", def.SupportEmail),
	}
}

// ToDocument encodes the setting for a write.
func (s Setting) ToDocument() backend.Document {
	return backend.Document{
		ID: s.ID,
		Data: map[string]any{
			"id":                   s.ID,
			"currency":             s.Currency,
			"language":             s.Language,
			"notificationsEnabled": s.NotificationsEnabled,
			"maintenanceMode":      s.MaintenanceMode,
			"minimumInvestment":    s.MinimumInvestment,
			"supportEmail":         s.SupportEmail,
		},
	}
}
