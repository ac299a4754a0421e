// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediagate/internal/core/editor"
	"github.com/taibuivan/mediagate/internal/core/geometry"
)

func newRedisStore(t *testing.T) (*editor.RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return editor.NewRedisSessionStore(client), server
}

func sampleSession(id string) *editor.Session {
	return &editor.Session{
		ID:        id,
		File:      "wp-content/uploads/2020/05/photo.jpg",
		MimeType:  "image/jpeg",
		Quality:   90,
		State:     editor.NewState(geometry.Size{Width: 1200, Height: 800}),
		CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisStore(t)

	session := sampleSession("0190a8e0-0000-7000-8000-000000000001")
	require.NoError(t, store.Create(ctx, session, time.Hour))
	assert.True(t, server.Exists("editor:session:"+session.ID))
	assert.Equal(t, time.Hour, server.TTL("editor:session:"+session.ID))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	updated, err := store.Update(ctx, session.ID, 2*time.Hour, func(s *editor.Session) error {
		s.State.Rotate(90)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 90, updated.State.Orientation)
	assert.Equal(t, 2*time.Hour, server.TTL("editor:session:"+session.ID))

	got, err = store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, editor.ErrSessionNotFound)

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(ctx, session.ID))
}

func TestRedisSessionStore_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	session := sampleSession("0190a8e0-0000-7000-8000-000000000002")
	require.NoError(t, store.Create(ctx, session, time.Hour))
	assert.Error(t, store.Create(ctx, session, time.Hour))
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisStore(t)

	session := sampleSession("0190a8e0-0000-7000-8000-000000000003")
	require.NoError(t, store.Create(ctx, session, time.Minute))

	server.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, editor.ErrSessionNotFound)
}

func TestRedisSessionStore_UpdateMissing(t *testing.T) {
	store, _ := newRedisStore(t)

	_, err := store.Update(context.Background(), "0190a8e0-0000-7000-8000-00000000dead", time.Hour, func(*editor.Session) error {
		t.Fatal("fn must not run for a missing session")
		return nil
	})
	assert.ErrorIs(t, err, editor.ErrSessionNotFound)
}

func TestRedisSessionStore_UpdateAborted(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	session := sampleSession("0190a8e0-0000-7000-8000-000000000004")
	require.NoError(t, store.Create(ctx, session, time.Hour))

	refused := errors.New("refused")
	_, err := store.Update(ctx, session.ID, time.Hour, func(s *editor.Session) error {
		s.Quality = 10
		return refused
	})
	assert.ErrorIs(t, err, refused)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Quality, "aborted update is not written")
}

func TestRedisSessionStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	session := sampleSession("0190a8e0-0000-7000-8000-000000000005")
	require.NoError(t, store.Create(ctx, session, time.Hour))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, session.ID, time.Hour, func(s *editor.Session) error {
				s.Quality++
				return nil
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 90+succeeded, got.Quality, "no update is lost")
}

func TestRedisSessionStore_UpdateBusy(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisStore(t)

	session := sampleSession("0190a8e0-0000-7000-8000-000000000009")
	require.NoError(t, store.Create(ctx, session, time.Hour))

	rival := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = rival.Close() })
	key := "editor:session:" + session.ID

	calls := 0
	_, err := store.Update(ctx, session.ID, time.Hour, func(s *editor.Session) error {
		calls++
		// A write from another client between WATCH and EXEC aborts the transaction.
		payload, err := rival.Get(ctx, key).Result()
		require.NoError(t, err)
		require.NoError(t, rival.Set(ctx, key, payload, time.Hour).Err())
		s.State.Rotate(90)
		return nil
	})

	assert.ErrorIs(t, err, editor.ErrSessionBusy)
	assert.Equal(t, 5, calls)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.State.Orientation)
}
