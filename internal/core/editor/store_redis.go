// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/mediagate/internal/platform/constants"
)

// maxUpdateAttempts bounds optimistic retries when two requests edit the
// same session at once.
const maxUpdateAttempts = 5

// RedisSessionStore implements [SessionStore] using Redis.
type RedisSessionStore struct {
	client redis.UniversalClient
}

// NewRedisSessionStore creates a new Redis-backed [SessionStore].
func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string {
	return constants.RedisPrefixEditorSession + id
}

/*
Create stores a new session with its TTL.

Returns:
  - error: a conflict when the id is already taken, or connectivity errors
*/
func (store *RedisSessionStore) Create(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_editor_session_encode_failed: %w", err)
	}

	created, err := store.client.SetNX(ctx, sessionKey(session.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis_editor_session_create_failed: %w", err)
	}
	if !created {
		return fmt.Errorf("redis_editor_session_create_failed: id %s already exists", session.ID)
	}

	return nil
}

/*
Get retrieves a session.

Returns:
  - *Session
  - error: [ErrSessionNotFound] if the session is absent or expired
*/
func (store *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := store.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis_editor_session_get_failed: %w", err)
	}

	return decodeSession(payload)
}

/*
Update reads, modifies and writes a session inside a WATCH transaction, so a
concurrent edit makes one of the writers retry instead of losing operations.
*/
func (store *RedisSessionStore) Update(ctx context.Context, id string, ttl time.Duration, fn func(*Session) error) (*Session, error) {
	key := sessionKey(id)
	var updated *Session

	txf := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			return err
		}

		session, err := decodeSession(payload)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}

		encoded, err := json.Marshal(session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, ttl)
			return nil
		})
		if err == nil {
			updated = session
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := store.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("redis_editor_session_update_failed: %s: %w", id, ErrSessionBusy)
}

// Delete removes the session. Deleting an unknown session is not an error.
func (store *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := store.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis_editor_session_delete_failed: %w", err)
	}
	return nil
}

func decodeSession(payload []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("redis_editor_session_decode_failed: %w", err)
	}
	return &session, nil
}
