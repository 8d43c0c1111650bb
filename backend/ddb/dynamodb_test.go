/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/errors"
	"github.com/suparena/estatesync/registry"
)

func newTestConnection() (*Connection, *fakeDB) {
	db := newFakeDB()
	return NewWithClients(db, nil, "estate"), db
}

func TestWriteStoresKeysAndEntityType(t *testing.T) {
	ctx := context.Background()
	conn, db := newTestConnection()

	err := conn.WriteOnce(ctx, backend.Doc(registry.Properties, "p1"), backend.Document{
		ID:   "p1",
		Data: map[string]any{"title": "Loft", "price": 1200.5},
	})
	require.NoError(t, err)

	item := db.items["PROPERTY#p1"]
	require.NotNil(t, item)
	assert.Equal(t, "PROPERTY#p1", item["SK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "PROPERTY", item["GSI1PK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "p1", item["GSI1SK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, registry.Properties, item[EntityTypeAttr].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "p1", item["id"].(*types.AttributeValueMemberS).Value)
}

func TestFetchDocumentStripsKeys(t *testing.T) {
	ctx := context.Background()
	conn, _ := newTestConnection()
	target := backend.Doc(registry.Users, "u1")
	require.NoError(t, conn.WriteOnce(ctx, target, backend.Document{ID: "u1", Data: map[string]any{"name": "Ann"}}))

	snap, err := conn.FetchOnce(ctx, target)
	require.NoError(t, err)
	doc, ok := snap.Single()
	require.True(t, ok)
	assert.Equal(t, "u1", doc.ID)
	assert.Equal(t, "Ann", doc.Data["name"])
	for _, attr := range []string{"PK", "SK", "GSI1PK", "GSI1SK", EntityTypeAttr} {
		assert.NotContains(t, doc.Data, attr)
	}

	snap, err = conn.FetchOnce(ctx, backend.Doc(registry.Users, "missing"))
	require.NoError(t, err)
	_, ok = snap.Single()
	assert.False(t, ok)
}

func TestFetchCollectionPagesAndFilters(t *testing.T) {
	ctx := context.Background()
	conn, db := newTestConnection()
	db.pageSize = 2

	for _, p := range []struct{ id, status string }{
		{"p3", "open"}, {"p1", "open"}, {"p2", "closed"}, {"p4", "open"}, {"p5", "funded"},
	} {
		require.NoError(t, conn.WriteOnce(ctx, backend.Doc(registry.Properties, p.id), backend.Document{
			Data: map[string]any{"status": p.status},
		}))
	}
	// another collection in the same table
	require.NoError(t, conn.WriteOnce(ctx, backend.Doc(registry.Users, "u1"), backend.Document{Data: map[string]any{}}))

	snap, err := conn.FetchOnce(ctx, backend.Collection(registry.Properties, nil))
	require.NoError(t, err)
	require.Len(t, snap.Documents, 5)
	assert.Equal(t, "p1", snap.Documents[0].ID)
	assert.Equal(t, "p5", snap.Documents[4].ID)
	assert.Equal(t, 3, db.queries)

	snap, err = conn.FetchOnce(ctx, backend.Collection(registry.Properties, &backend.Filter{Field: "status", Value: "open"}))
	require.NoError(t, err)
	ids := make([]string, 0, len(snap.Documents))
	for _, d := range snap.Documents {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"p1", "p3", "p4"}, ids)
}

func TestFetchKeepsUnreadableItems(t *testing.T) {
	ctx := context.Background()
	conn, db := newTestConnection()
	for _, id := range []string{"p1", "p2"} {
		require.NoError(t, conn.WriteOnce(ctx, backend.Doc(registry.Properties, id), backend.Document{
			Data: map[string]any{"title": "Loft " + id},
		}))
	}
	db.items["PROPERTY#p2"]["title"] = &types.UnknownUnionMember{Tag: "X"}

	snap, err := conn.FetchOnce(ctx, backend.Collection(registry.Properties, nil))
	require.NoError(t, err)
	require.Len(t, snap.Documents, 2)
	assert.Equal(t, "Loft p1", snap.Documents[0].Data["title"])
	assert.Equal(t, "p2", snap.Documents[1].ID)
	assert.Empty(t, snap.Documents[1].Data)

	snap, err = conn.FetchOnce(ctx, backend.Doc(registry.Properties, "p2"))
	require.NoError(t, err)
	doc, ok := snap.Single()
	require.True(t, ok)
	assert.Equal(t, "p2", doc.ID)
}

func TestUpdateAndDeleteMissingAreNotFound(t *testing.T) {
	ctx := context.Background()
	conn, _ := newTestConnection()
	target := backend.Doc(registry.Users, "ghost")

	err := conn.UpdateOnce(ctx, target, map[string]any{"name": "x"})
	assert.True(t, errors.IsNotFound(err))

	err = conn.DeleteOnce(ctx, target)
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	conn, _ := newTestConnection()
	target := backend.Doc(registry.Users, "u1")
	require.NoError(t, conn.WriteOnce(ctx, target, backend.Document{Data: map[string]any{"name": "Ann", "role": "investor"}}))

	require.NoError(t, conn.UpdateOnce(ctx, target, map[string]any{"role": "admin", "balance": 10.0}))

	snap, err := conn.FetchOnce(ctx, target)
	require.NoError(t, err)
	doc, _ := snap.Single()
	assert.Equal(t, "Ann", doc.Data["name"])
	assert.Equal(t, "admin", doc.Data["role"])
	assert.Equal(t, 10.0, doc.Data["balance"])
}

func TestBuildUpdateExpression(t *testing.T) {
	expr, names, values, err := buildUpdateExpression(map[string]any{"b": 2, "a": "x", "c": []string{"y"}})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", expr)
	assert.Equal(t, map[string]string{"#f0": "a", "#f1": "b", "#f2": "c"}, names)
	assert.IsType(t, &types.AttributeValueMemberS{}, values[":v0"])
	assert.IsType(t, &types.AttributeValueMemberN{}, values[":v1"])
	assert.IsType(t, &types.AttributeValueMemberL{}, values[":v2"])

	_, _, _, err = buildUpdateExpression(nil)
	assert.Error(t, err)
}

func TestWriteRequiresDocumentAndKnownCollection(t *testing.T) {
	ctx := context.Background()
	conn, _ := newTestConnection()

	err := conn.WriteOnce(ctx, backend.Collection(registry.Users, nil), backend.Document{})
	assert.True(t, errors.IsValidationError(err))

	err = conn.WriteOnce(ctx, backend.Doc("unknown", "x"), backend.Document{})
	assert.ErrorIs(t, err, errors.ErrNoIndexMap)
}
