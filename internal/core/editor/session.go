// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("editor: session not found")

// ErrSessionBusy is returned when concurrent edits keep invalidating an update.
var ErrSessionBusy = errors.New("editor: session is being edited concurrently")

// # Domain Types

// Session is an open editor on one original upload.
type Session struct {
	ID string `json:"id"`
	// File is the original, relative to the WordPress root.
	File     string `json:"file"`
	MimeType string `json:"mime_type"`
	Quality  int    `json:"quality"`
	State    State  `json:"state"`
	// Saved is the last path the session was saved to.
	Saved     string    `json:"saved,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transform flattens the session state.
func (s *Session) Transform() Transform {
	return s.State.Flatten(s.Quality)
}

// SavedImage describes one materialized output, shaped like a WordPress
// size entry.
type SavedImage struct {
	Path     string `json:"path,omitempty"`
	File     string `json:"file"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime-type"`
}

// # Store

// SessionStore persists sessions between requests.
type SessionStore interface {
	Create(ctx context.Context, session *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update applies fn to the stored session atomically and refreshes its TTL.
	// A non-nil error from fn aborts the update.
	Update(ctx context.Context, id string, ttl time.Duration, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}
