/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/backend/memory"
	"github.com/suparena/estatesync/errors"
)

type recorder struct {
	mu    sync.Mutex
	snaps []*backend.Snapshot
	errs  []error
	ch    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 64)}
}

func (r *recorder) listen(snap *backend.Snapshot, err error) {
	r.mu.Lock()
	if err != nil {
		r.errs = append(r.errs, err)
	} else {
		r.snaps = append(r.snaps, snap)
	}
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for push %d of %d", i+1, n)
		}
	}
}

func (r *recorder) last() *backend.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return nil
	}
	return r.snaps[len(r.snaps)-1]
}

func TestStoreWriteFetchDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	target := backend.Doc("users", "u1")

	require.NoError(t, store.WriteOnce(ctx, target, backend.Document{ID: "u1", Data: map[string]any{"name": "Ann"}}))

	snap, err := store.FetchOnce(ctx, target)
	require.NoError(t, err)
	doc, ok := snap.Single()
	require.True(t, ok)
	assert.Equal(t, "Ann", doc.Data["name"])

	require.NoError(t, store.UpdateOnce(ctx, target, map[string]any{"phone": "555"}))
	data, ok := store.Get("users", "u1")
	require.True(t, ok)
	assert.Equal(t, "Ann", data["name"])
	assert.Equal(t, "555", data["phone"])

	require.NoError(t, store.DeleteOnce(ctx, target))
	assert.Equal(t, 0, store.Count("users"))

	err = store.DeleteOnce(ctx, target)
	assert.True(t, errors.IsNotFound(err))
	err = store.UpdateOnce(ctx, target, map[string]any{"x": 1})
	assert.True(t, errors.IsNotFound(err))
}

func TestStoreRejectsCollectionTargetsForWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	err := store.WriteOnce(ctx, backend.Collection("users", nil), backend.Document{})
	assert.True(t, errors.IsValidationError(err))
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	payload := map[string]any{"name": "Ann"}
	require.NoError(t, store.WriteOnce(ctx, backend.Doc("users", "u1"), backend.Document{ID: "u1", Data: payload}))
	payload["name"] = "mutated"

	snap, err := store.FetchOnce(ctx, backend.Doc("users", "u1"))
	require.NoError(t, err)
	snap.Documents[0].Data["name"] = "also mutated"

	data, _ := store.Get("users", "u1")
	assert.Equal(t, "Ann", data["name"])
}

func TestSubscribeDocumentPushesInitialAndChanges(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	rec := newRecorder()

	h, err := store.Subscribe(ctx, backend.Doc("users", "u1"), rec.listen)
	require.NoError(t, err)
	defer h.Cancel()

	rec.wait(t, 1)
	_, ok := rec.last().Single()
	assert.False(t, ok, "absent document yields an empty snapshot")

	store.Seed("users", backend.Document{ID: "u1", Data: map[string]any{"name": "Ann"}})
	rec.wait(t, 1)
	doc, ok := rec.last().Single()
	require.True(t, ok)
	assert.Equal(t, "Ann", doc.Data["name"])

	// unrelated document does not notify
	store.Seed("users", backend.Document{ID: "u2", Data: map[string]any{"name": "Bob"}})

	require.NoError(t, store.DeleteOnce(ctx, backend.Doc("users", "u1")))
	rec.wait(t, 1)
	_, ok = rec.last().Single()
	assert.False(t, ok)

	rec.mu.Lock()
	assert.Len(t, rec.snaps, 3)
	rec.mu.Unlock()
}

func TestSubscribeCollectionFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Seed("properties",
		backend.Document{ID: "p2", Data: map[string]any{"status": "open"}},
		backend.Document{ID: "p1", Data: map[string]any{"status": "open"}},
		backend.Document{ID: "p3", Data: map[string]any{"status": "closed"}},
	)
	rec := newRecorder()

	h, err := store.Subscribe(ctx, backend.Collection("properties", &backend.Filter{Field: "status", Value: "open"}), rec.listen)
	require.NoError(t, err)
	defer h.Cancel()

	rec.wait(t, 1)
	snap := rec.last()
	require.Len(t, snap.Documents, 2)
	assert.Equal(t, "p1", snap.Documents[0].ID)
	assert.Equal(t, "p2", snap.Documents[1].ID)

	// leaving the filter notifies
	require.NoError(t, store.UpdateOnce(ctx, backend.Doc("properties", "p1"), map[string]any{"status": "funded"}))
	rec.wait(t, 1)
	require.Len(t, rec.last().Documents, 1)
	assert.Equal(t, "p2", rec.last().Documents[0].ID)

	// entering the filter notifies
	require.NoError(t, store.UpdateOnce(ctx, backend.Doc("properties", "p3"), map[string]any{"status": "open"}))
	rec.wait(t, 1)
	require.Len(t, rec.last().Documents, 2)
}

func TestCancelDetachesListener(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	rec := newRecorder()

	h, err := store.Subscribe(ctx, backend.Collection("users", nil), rec.listen)
	require.NoError(t, err)
	rec.wait(t, 1)
	assert.Equal(t, 1, store.ActiveSubscriptions())

	h.Cancel()
	h.Cancel()
	assert.Equal(t, 0, store.ActiveSubscriptions())

	store.Seed("users", backend.Document{ID: "u1", Data: map[string]any{}})
	select {
	case <-rec.ch:
		t.Fatal("listener called after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestContextCancelDetachesListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memory.New()
	rec := newRecorder()

	_, err := store.Subscribe(ctx, backend.Collection("users", nil), rec.listen)
	require.NoError(t, err)
	rec.wait(t, 1)

	cancel()
	assert.Eventually(t, func() bool { return store.ActiveSubscriptions() == 0 }, time.Second, 5*time.Millisecond)
}

func TestFailPushesError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	rec := newRecorder()
	target := backend.Doc("settings", "app")

	h, err := store.Subscribe(ctx, target, rec.listen)
	require.NoError(t, err)
	defer h.Cancel()
	rec.wait(t, 1)

	boom := stderrors.New("permission denied")
	store.Fail(target, boom)
	rec.wait(t, 1)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.errs, 1)
	assert.Equal(t, boom, rec.errs[0])
}

func TestErrorHooks(t *testing.T) {
	ctx := context.Background()
	boom := stderrors.New("boom")

	store := memory.New().WithFetchError(boom)
	_, err := store.FetchOnce(ctx, backend.Doc("users", "u1"))
	assert.Equal(t, boom, err)

	store = memory.New().WithWriteError(boom)
	assert.Equal(t, boom, store.WriteOnce(ctx, backend.Doc("users", "u1"), backend.Document{ID: "u1"}))

	store = memory.New().WithDeleteError(boom)
	store.Seed("users", backend.Document{ID: "u1", Data: map[string]any{}})
	assert.Equal(t, boom, store.DeleteOnce(ctx, backend.Doc("users", "u1")))

	store = memory.New().WithSubscribeError(boom)
	h, err := store.Subscribe(ctx, backend.Doc("users", "u1"), func(*backend.Snapshot, error) {})
	assert.Nil(t, h)
	assert.Equal(t, boom, err)
	assert.Equal(t, 0, store.ActiveSubscriptions())
}
