/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIndexMaps(t *testing.T) {
	for _, name := range []string{Users, Properties, Settings, Credentials} {
		idx, ok := GetIndexMap(name)
		require.True(t, ok, "missing index map for %s", name)
		assert.Contains(t, idx, "PK")
		assert.Contains(t, idx, "GSI1PK")
	}
	assert.Subset(t, Collections(), []string{Users, Properties, Settings, Credentials})
}

func TestExpand(t *testing.T) {
	idx, _ := GetIndexMap(Users)
	got := Expand(idx, "u-42")

	assert.Equal(t, "USER#u-42", got["PK"])
	assert.Equal(t, "USER#u-42", got["SK"])
	assert.Equal(t, "USER", got["GSI1PK"])
	assert.Equal(t, "u-42", got["GSI1SK"])
}

func TestCollectionForKey(t *testing.T) {
	name, id, ok := CollectionForKey("PROPERTY#p-1")
	require.True(t, ok)
	assert.Equal(t, Properties, name)
	assert.Equal(t, "p-1", id)

	_, _, ok = CollectionForKey("ORDER#1")
	assert.False(t, ok)

	_, _, ok = CollectionForKey("USER#")
	assert.False(t, ok)
}
