/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"slices"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/estatesync/backend"
)

// PropertyStatus is the funding state of a listing.
type PropertyStatus string

const (
	StatusOpen   PropertyStatus = "open"
	StatusFunded PropertyStatus = "funded"
	StatusClosed PropertyStatus = "closed"
)

// Valid reports whether s is a known status.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusFunded, StatusClosed:
		return true
	}
	return false
}

// Property is a co-investment listing from the properties collection.
type Property struct {
	ID              string
	Title           string
	Description     string
	Location        string
	Price           float64
	SharePrice      float64
	TotalShares     int
	AvailableShares int
	ImageURLs       []string
	Status          PropertyStatus
	CreatedAt       strfmt.DateTime
}

// DecodeProperty converts a raw document into a Property using defaults for
// anything missing or mistyped.
func DecodeProperty(doc backend.Document) Property {
	data := doc.Data
	status := PropertyStatus(stringField(data, "status", string(StatusOpen)))
	if !status.Valid() {
		status = StatusOpen
	}
	total := intField(data, "totalShares", 0)
	if total < 0 {
		total = 0
	}
	available := intField(data, "availableShares", total)
	if available < 0 || available > total {
		available = total
	}
	return Property{
		ID:              documentID(doc.ID, data),
		Title:           stringField(data, "title", ""),
		Description:     stringField(data, "description", ""),
		Location:        stringField(data, "location", ""),
		Price:           floatField(data, "price", 0),
		SharePrice:      floatField(data, "sharePrice", 0),
		TotalShares:     total,
		AvailableShares: available,
		ImageURLs:       stringsField(data, "imageUrls"),
		Status:          status,
		CreatedAt:       timeField(data, "createdAt"),
	}
}

// ToDocument encodes the property for a write.
func (p Property) ToDocument() backend.Document {
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	return backend.Document{
		ID: p.ID,
		Data: map[string]any{
			"id":              p.ID,
			"title":           p.Title,
			"description":     p.Description,
			"location":        p.Location,
			"price":           p.Price,
			"sharePrice":      p.SharePrice,
			"totalShares":     p.TotalShares,
			"availableShares": p.AvailableShares,
			"imageUrls":       images,
			"status":          string(p.Status),
			"createdAt":       formatTime(p.CreatedAt),
		},
	}
}

// FundedRatio is the fraction of shares already sold, in [0, 1].
func (p Property) FundedRatio() float64 {
	if p.TotalShares <= 0 {
		return 0
	}
	return float64(p.TotalShares-p.AvailableShares) / float64(p.TotalShares)
}

// Equal compares two properties field by field.
func (p Property) Equal(o Property) bool {
	return p.ID == o.ID &&
		p.Title == o.Title &&
		p.Description == o.Description &&
		p.Location == o.Location &&
		p.Price == o.Price &&
		p.SharePrice == o.SharePrice &&
		p.TotalShares == o.TotalShares &&
		p.AvailableShares == o.AvailableShares &&
		slices.Equal(p.ImageURLs, o.ImageURLs) &&
		p.Status == o.Status &&
		sameTime(p.CreatedAt, o.CreatedAt)
}
