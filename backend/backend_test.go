/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package backend

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetMatches(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		id     string
		data   map[string]any
		want   bool
	}{
		{"DocumentSameID", Doc("users", "u1"), "u1", nil, true},
		{"DocumentOtherID", Doc("users", "u1"), "u2", nil, false},
		{"CollectionNoFilter", Collection("users", nil), "u2", nil, true},
		{"FilterMatch", Collection("properties", &Filter{Field: "status", Value: "open"}), "p1", map[string]any{"status": "open"}, true},
		{"FilterMismatch", Collection("properties", &Filter{Field: "status", Value: "open"}), "p1", map[string]any{"status": "closed"}, false},
		{"FilterMissingField", Collection("properties", &Filter{Field: "status", Value: "open"}), "p1", map[string]any{}, false},
		{"FilterNumberKinds", Collection("properties", &Filter{Field: "shares", Value: 10}), "p1", map[string]any{"shares": float64(10)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.Matches(tt.id, tt.data))
		})
	}
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "users/u1", Doc("users", "u1").String())
	assert.Equal(t, "users", Collection("users", nil).String())
	assert.Equal(t, "properties?status=open", Collection("properties", &Filter{Field: "status", Value: "open"}).String())
}

func TestOnceHandle(t *testing.T) {
	var calls int32
	h := NewOnceHandle(func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 5; i++ {
		h.Cancel()
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	NewOnceHandle(nil).Cancel()
}

func TestSnapshotSingle(t *testing.T) {
	var nilSnap *Snapshot
	_, ok := nilSnap.Single()
	assert.False(t, ok)

	snap := &Snapshot{Documents: []Document{{ID: "a"}}}
	doc, ok := snap.Single()
	assert.True(t, ok)
	assert.Equal(t, "a", doc.ID)
}
