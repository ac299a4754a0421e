// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies pgx errors raised while reading the media library
// into [apperr.AppError] values.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/mediagate/internal/platform/apperr"
)

var (
	// ErrNotFound is returned when the queried attachment row doesn't exist.
	ErrNotFound = apperr.NotFound("Attachment")

	// ErrUnavailable is returned when PostgreSQL cannot be reached in time.
	ErrUnavailable = apperr.ServiceUnavailable("Media library is unavailable")
)

// Wrap classifies err. The action names the failed operation in the
// server-side cause.
//
//   - pgx.ErrNoRows                    → [ErrNotFound]
//   - timeouts and connection failures → [ErrUnavailable], wrapping err
//   - anything else                    → Internal
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	if unavailable(err) {
		return fmt.Errorf("%s: %w: %w", action, ErrUnavailable, err)
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

func unavailable(err error) bool {
	var connectErr *pgconn.ConnectError
	return pgconn.Timeout(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &connectErr)
}
