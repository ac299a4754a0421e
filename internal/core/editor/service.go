// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package editor is an image editor that never touches pixels.

Resize, crop, rotate and flip calls are recorded in a [State]. When the image
is streamed or saved, the state is flattened into one set of Imgix
parameters and the result is fetched from Imgix.

Sessions live in a [SessionStore] between requests, so an editor can be
driven over HTTP one operation at a time.
*/
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/taibuivan/mediagate/internal/core/geometry"
	"github.com/taibuivan/mediagate/internal/core/imagepath"
	"github.com/taibuivan/mediagate/internal/core/imgix"
	"github.com/taibuivan/mediagate/internal/core/storage"
	"github.com/taibuivan/mediagate/internal/platform/apperr"
	"github.com/taibuivan/mediagate/internal/platform/constants"
	"github.com/taibuivan/mediagate/internal/platform/ctxutil"
	"github.com/taibuivan/mediagate/internal/platform/validate"
	"github.com/taibuivan/mediagate/pkg/pointer"
	"github.com/taibuivan/mediagate/pkg/unipath"
	"github.com/taibuivan/mediagate/pkg/uuid"
)

// # Collaborators

// Originals opens original uploads.
type Originals interface {
	Open(relativePath string) (*os.File, error)
}

// URLBuilder creates Imgix URLs without default parameters.
type URLBuilder interface {
	RawURL(path string, params imgix.Params) string
}

// Options are the editor settings read from configuration.
type Options struct {
	UploadsDir string
	// LocalMultiResize writes saved images to the sink; otherwise saving only
	// reports the metadata.
	LocalMultiResize bool
	LocalQuality     int
	SessionTTL       time.Duration
}

// # Service Layer

// Service drives editor sessions.
type Service struct {
	store     SessionStore
	originals Originals
	urls      URLBuilder
	fetcher   Fetcher
	sink      storage.Sink
	matcher   *Matcher

	uploadsPrefix string
	opts          Options
	logger        *slog.Logger
}

// NewService constructs a new editor [Service].
func NewService(store SessionStore, originals Originals, urls URLBuilder, fetcher Fetcher, sink storage.Sink, opts Options, logger *slog.Logger) *Service {
	return &Service{
		store:         store,
		originals:     originals,
		urls:          urls,
		fetcher:       fetcher,
		sink:          sink,
		matcher:       NewMatcher(opts.UploadsDir),
		uploadsPrefix: strings.Trim(opts.UploadsDir, "/") + "/",
		opts:          opts,
		logger:        logger,
	}
}

// OpenInput opens a session on an original.
type OpenInput struct {
	// Path is relative to the WordPress root.
	Path    string `json:"path"`
	Quality *int   `json:"quality,omitempty"`
}

/*
Open starts a session.

Description: The original must be a supported upload that exists and whose
header can be decoded. No session is stored when any check fails.

Returns:
  - *Session: the new session, with an untouched state
  - error: VALIDATION_ERROR, UNSUPPORTED_MEDIA_TYPE, NOT_FOUND or UNPROCESSABLE
*/
func (service *Service) Open(ctx context.Context, input OpenInput) (*Session, error) {
	logger := ctxutil.LoggerOr(ctx, service.logger)
	file := unipath.Clean(input.Path)
	quality := pointer.Fallback(input.Quality, service.opts.LocalQuality)

	v := &validate.Validator{}
	v.Required("path", input.Path).RelativePath("path", file).Range("quality", quality, 1, 100)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if !service.matcher.Supports(file) {
		return nil, apperr.UnsupportedMedia("The editor does not support this file")
	}

	reader, err := service.originals.Open(file)
	if err != nil {
		logger.ErrorContext(ctx, "editor_original_unreadable", slog.String("file", file), slog.Any("error", err))
		return nil, apperr.NotFound("Image")
	}
	defer reader.Close()

	size, mimeType, err := Probe(reader)
	if err != nil {
		logger.ErrorContext(ctx, "editor_invalid_image", slog.String("file", file), slog.Any("error", err))
		return nil, apperr.Unprocessable("Could not read image size")
	}

	session := &Session{
		ID:        uuid.New(),
		File:      file,
		MimeType:  mimeType,
		Quality:   quality,
		State:     NewState(size),
		CreatedAt: time.Now().UTC(),
	}

	if err := service.store.Create(ctx, session, service.opts.SessionTTL); err != nil {
		return nil, apperr.Internal(err)
	}

	logger.InfoContext(ctx, "editor_session_opened",
		slog.String("session_id", session.ID),
		slog.String("file", file),
		slog.Int("width", size.Width),
		slog.Int("height", size.Height),
	)
	return session, nil
}

// Get returns a session.
func (service *Service) Get(ctx context.Context, id string) (*Session, error) {
	if err := (&validate.Validator{}).UUID("id", id).Err(); err != nil {
		return nil, err
	}

	session, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return session, nil
}

/*
Apply records operations on a session.

Description: Operations are validated up front and applied in order. If any
fails (a resize WordPress would refuse), none are kept.
*/
func (service *Service) Apply(ctx context.Context, id string, operations []Operation) (*Session, error) {
	v := &validate.Validator{}
	v.UUID("id", id).
		Custom("operations", len(operations) == 0, "At least one operation is required").
		Custom("operations", len(operations) > constants.MaxEditorOperations,
			fmt.Sprintf("At most %d operations per request", constants.MaxEditorOperations))
	for i, op := range operations {
		op.validate(i, v)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	session, err := service.store.Update(ctx, id, service.opts.SessionTTL, func(session *Session) error {
		for _, op := range operations {
			if err := op.apply(session); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	ctxutil.LoggerOr(ctx, service.logger).DebugContext(ctx, "editor_operations_applied",
		slog.String("session_id", id),
		slog.Int("operations", len(operations)),
	)
	return session, nil
}

// URL returns the Imgix URL that renders the session's current state.
func (service *Service) URL(ctx context.Context, id string) (string, error) {
	session, err := service.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return service.url(session, ""), nil
}

// Stream fetches the rendered image. The caller closes the body.
func (service *Service) Stream(ctx context.Context, id string) (io.ReadCloser, string, error) {
	session, err := service.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	body, contentType, err := service.fetcher.Fetch(ctx, service.url(session, ""))
	if err != nil {
		return nil, "", err
	}
	if contentType == "" {
		contentType = session.MimeType
	}
	return body, contentType, nil
}

// SaveInput names the output of a save.
type SaveInput struct {
	// Filename is relative to the WordPress root; empty means
	// "<name>-<w>x<h>.<ext>" next to the original.
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// Save materializes the current state and remembers where it went.
func (service *Service) Save(ctx context.Context, id string, input SaveInput) (*SavedImage, error) {
	session, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	saved, err := service.save(ctx, session, input)
	if err != nil {
		return nil, err
	}

	_, err = service.store.Update(ctx, id, service.opts.SessionTTL, func(session *Session) error {
		session.Saved = saved.Path
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return saved, nil
}

// SizeRequest is one entry of a multi-resize, shaped like a registered size.
type SizeRequest struct {
	Width  *int          `json:"width,omitempty"`
	Height *int          `json:"height,omitempty"`
	Crop   geometry.Crop `json:"crop"`
}

/*
MultiResize saves one resized copy per size, each resized from the current
state, which is left unchanged.

Description: Sizes equal to the current size, sizes without dimensions,
sizes WordPress refuses to resize to, and results equal to the current size
are skipped. A failed fetch aborts the whole request.

Returns:
  - map[string]SavedImage: metadata per generated size name (without path)
*/
func (service *Service) MultiResize(ctx context.Context, id string, sizes map[string]SizeRequest) (map[string]SavedImage, error) {
	logger := ctxutil.LoggerOr(ctx, service.logger)

	session, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := session.State

	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	metadata := make(map[string]SavedImage, len(sizes))
	for _, name := range names {
		request := sizes[name]
		if pointer.Absent(request.Width, request.Height) {
			continue
		}

		width, height := pointer.Val(request.Width), pointer.Val(request.Height)
		if width == snapshot.Size.Width && height == snapshot.Size.Height {
			continue
		}

		resized := *session
		resized.State = snapshot
		if err := resized.State.Resize(width, height, request.Crop); err != nil {
			logger.DebugContext(ctx, "editor_size_skipped", slog.String("size", name), slog.Any("error", err))
			continue
		}
		if resized.State.Size == snapshot.Size {
			continue
		}

		saved, err := service.save(ctx, &resized, SaveInput{})
		if err != nil {
			return nil, err
		}
		saved.Path = ""
		metadata[name] = *saved
	}

	logger.InfoContext(ctx, "editor_multi_resize",
		slog.String("session_id", id),
		slog.Int("requested", len(sizes)),
		slog.Int("saved", len(metadata)),
	)
	return metadata, nil
}

// Close ends a session.
func (service *Service) Close(ctx context.Context, id string) error {
	if err := (&validate.Validator{}).UUID("id", id).Err(); err != nil {
		return err
	}
	if err := service.store.Delete(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// # Internals

// url builds the Imgix URL for session; format is an optional "fm" value.
func (service *Service) url(session *Session, format string) string {
	params := session.Transform().Params()
	if format != "" {
		params["fm"] = format
	}
	return service.urls.RawURL(strings.TrimPrefix(session.File, service.uploadsPrefix), params)
}

func (service *Service) save(ctx context.Context, session *Session, input SaveInput) (*SavedImage, error) {
	filename, mimeType, format, err := service.outputFormat(session, input)
	if err != nil {
		return nil, err
	}

	if service.opts.LocalMultiResize {
		body, _, err := service.fetcher.Fetch(ctx, service.url(session, format))
		if err != nil {
			return nil, err
		}
		defer body.Close()

		if err := service.sink.Put(ctx, filename, mimeType, body); err != nil {
			var appError *apperr.AppError
			if errors.As(err, &appError) {
				return nil, err
			}
			return nil, apperr.Internal(err)
		}

		ctxutil.LoggerOr(ctx, service.logger).InfoContext(ctx, "editor_image_saved",
			slog.String("session_id", session.ID),
			slog.String("path", filename),
		)
	}

	return &SavedImage{
		Path:     filename,
		File:     path.Base(filename),
		Width:    session.State.Size.Width,
		Height:   session.State.Size.Height,
		MimeType: mimeType,
	}, nil
}

// outputFormat decides the output path, MIME type and Imgix format.
func (service *Service) outputFormat(session *Session, input SaveInput) (string, string, string, error) {
	mimeType := input.MimeType
	if mimeType == "" && input.Filename != "" {
		mimeType = MimeTypeOf(input.Filename)
	}
	if mimeType == "" {
		mimeType = session.MimeType
	}

	format := ""
	if mimeType != session.MimeType {
		var ok bool
		if format, ok = outputFormats[mimeType]; !ok {
			return "", "", "", apperr.UnsupportedMedia("Imgix cannot produce " + mimeType)
		}
	}

	filename := unipath.Clean(input.Filename)
	if filename == "" {
		filename = imagepath.Sized(session.File, session.State.Size.Width, session.State.Size.Height)
		if format != "" {
			filename = imagepath.WithExtension(filename, format)
		}
	}

	v := &validate.Validator{}
	v.RelativePath("filename", filename).
		Custom("filename", !strings.HasPrefix(filename, service.uploadsPrefix), "Must be inside the uploads directory")
	if err := v.Err(); err != nil {
		return "", "", "", err
	}

	return filename, mimeType, format, nil
}

func storeError(err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return apperr.NotFound("Editor session")
	}
	if errors.Is(err, ErrSessionBusy) {
		return apperr.Conflict("Editor session was modified concurrently, retry the request")
	}
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.Internal(err)
}
