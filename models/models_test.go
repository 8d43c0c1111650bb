/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"

	"github.com/suparena/estatesync/backend"
)

func TestDecodeUser(t *testing.T) {
	t.Run("WellFormed", func(t *testing.T) {
		u := DecodeUser(backend.Document{ID: "u1", Data: map[string]any{
			"name":        "Ada",
			"email":       "ada@example.com",
			"role":        "admin",
			"investments": []any{"p1", "p2"},
			"balance":     float64(2500),
			"createdAt":   "2025-03-01T10:00:00Z",
		}})

		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "Ada", u.Name)
		assert.Equal(t, RoleAdmin, u.Role)
		assert.Equal(t, []string{"p1", "p2"}, u.Investments)
		assert.Equal(t, 2500.0, u.Balance)
		assert.True(t, time.Time(u.CreatedAt).Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))
	})

	t.Run("MalformedFieldsUseDefaults", func(t *testing.T) {
		u := DecodeUser(backend.Document{ID: "u2", Data: map[string]any{
			"name":        42,
			"role":        "superuser",
			"investments": "p1",
			"balance":     "lots",
			"createdAt":   true,
		}})

		assert.Equal(t, "u2", u.ID)
		assert.Equal(t, "", u.Name)
		assert.Equal(t, RoleInvestor, u.Role)
		assert.Equal(t, []string{}, u.Investments)
		assert.Equal(t, 0.0, u.Balance)
		assert.True(t, time.Time(u.CreatedAt).IsZero())
	})

	t.Run("NilData", func(t *testing.T) {
		u := DecodeUser(backend.Document{ID: "u3"})
		assert.Equal(t, "u3", u.ID)
		assert.Equal(t, RoleInvestor, u.Role)
	})

	t.Run("IDFromPayload", func(t *testing.T) {
		u := DecodeUser(backend.Document{Data: map[string]any{"id": "u4"}})
		assert.Equal(t, "u4", u.ID)
	})
}

func TestUserDocumentRoundTrip(t *testing.T) {
	u := User{
		ID:          "u1",
		Name:        "Ada",
		Email:       "ada@example.com",
		Role:        RoleInvestor,
		Investments: []string{"p1"},
		Balance:     10.5,
		CreatedAt:   strfmt.DateTime(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)),
	}
	assert.True(t, u.Equal(DecodeUser(u.ToDocument())))

	admin := u.WithRole(RoleAdmin)
	assert.True(t, admin.IsAdmin())
	assert.False(t, u.IsAdmin())
	assert.False(t, u.Equal(admin))
}

func TestDecodeProperty(t *testing.T) {
	t.Run("SharesAreClamped", func(t *testing.T) {
		p := DecodeProperty(backend.Document{ID: "p1", Data: map[string]any{
			"title":           "Harbour Lofts",
			"price":           "1200000",
			"totalShares":     float64(100),
			"availableShares": float64(250),
			"status":          "funded",
			"imageUrls":       []any{"a.jpg", 3, "b.jpg"},
		}})

		assert.Equal(t, 1200000.0, p.Price)
		assert.Equal(t, 100, p.TotalShares)
		assert.Equal(t, 100, p.AvailableShares)
		assert.Equal(t, StatusFunded, p.Status)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.ImageURLs)
		assert.Equal(t, 0.0, p.FundedRatio())
	})

	t.Run("Defaults", func(t *testing.T) {
		p := DecodeProperty(backend.Document{ID: "p2", Data: map[string]any{
			"totalShares": "x",
			"status":      7,
		}})
		assert.Equal(t, 0, p.TotalShares)
		assert.Equal(t, StatusOpen, p.Status)
		assert.Equal(t, 0.0, p.FundedRatio())
	})

	t.Run("RoundTrip", func(t *testing.T) {
		p := Property{
			ID:              "p3",
			Title:           "Old Mill",
			Price:           500000,
			SharePrice:      500,
			TotalShares:     1000,
			AvailableShares: 250,
			ImageURLs:       []string{"mill.jpg"},
			Status:          StatusOpen,
		}
		got := DecodeProperty(p.ToDocument())
		assert.True(t, p.Equal(got))
		assert.InDelta(t, 0.75, got.FundedRatio(), 1e-9)
	})
}

func TestDecodeSetting(t *testing.T) {
	def := DefaultSetting()

	s := DecodeSetting(backend.Document{Data: map[string]any{
		"currency":          "EUR",
		"maintenanceMode":   "true",
		"minimumInvestment": []any{},
	}}, def)

	assert.Equal(t, DefaultSettingID, s.ID)
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, def.Language, s.Language)
	assert.True(t, s.MaintenanceMode)
	assert.Equal(t, def.MinimumInvestment, s.MinimumInvestment)
	assert.Equal(t, s, DecodeSetting(s.ToDocument(), def))
}
