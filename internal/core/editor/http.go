// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mediagate/internal/platform/constants"
	"github.com/taibuivan/mediagate/internal/platform/ctxutil"
	"github.com/taibuivan/mediagate/internal/platform/requestutil"
	"github.com/taibuivan/mediagate/internal/platform/respond"
)

// # Handler Implementation

// Handler exposes editor sessions over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new editor [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the session endpoints, mounted under /api/v1/editor/sessions.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.open)
	router.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.get)
		r.Delete("/", handler.close)
		r.Post("/operations", handler.apply)
		r.Get("/url", handler.url)
		r.Get("/stream", handler.stream)
		r.Post("/save", handler.save)
		r.Post("/multi-resize", handler.multiResize)
	})

	return router
}

// SessionView is a session as returned to clients.
type SessionView struct {
	*Session
	Transform Transform `json:"transform"`
}

func view(session *Session) SessionView {
	return SessionView{Session: session, Transform: session.Transform()}
}

/*
POST /api/v1/editor/sessions.

Request:
  - path: string (relative to the WordPress root)
  - quality: int (optional, 1-100)

Response:
  - 201: SessionView
*/
func (handler *Handler) open(writer http.ResponseWriter, request *http.Request) {
	var input OpenInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Open(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, view(session))
}

/*
GET /api/v1/editor/sessions/{id}.

Response:
  - 200: SessionView
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view(session))
}

type operationsRequest struct {
	Operations []Operation `json:"operations"`
}

/*
POST /api/v1/editor/sessions/{id}/operations.

Request:
  - operations: []Operation (applied in order, all or nothing)

Response:
  - 200: SessionView
*/
func (handler *Handler) apply(writer http.ResponseWriter, request *http.Request) {
	var input operationsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Apply(request.Context(), requestutil.ID(request, "id"), input.Operations)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view(session))
}

/*
GET /api/v1/editor/sessions/{id}/url.

Response:
  - 200: {"url": string}
*/
func (handler *Handler) url(writer http.ResponseWriter, request *http.Request) {
	url, err := handler.service.URL(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"url": url})
}

/*
GET /api/v1/editor/sessions/{id}/stream.

Response:
  - 200: the rendered image bytes
  - 502: Imgix could not be reached
*/
func (handler *Handler) stream(writer http.ResponseWriter, request *http.Request) {
	body, contentType, err := handler.service.Stream(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer body.Close()

	writer.Header().Set(constants.HeaderContentType, contentType)
	writer.WriteHeader(http.StatusOK)
	if _, err := io.Copy(writer, body); err != nil {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "editor_stream_interrupted", slog.Any("error", err))
	}
}

/*
POST /api/v1/editor/sessions/{id}/save.

Request:
  - filename: string (optional, relative to the WordPress root)
  - mime_type: string (optional)

Response:
  - 200: SavedImage
*/
func (handler *Handler) save(writer http.ResponseWriter, request *http.Request) {
	var input SaveInput
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	saved, err := handler.service.Save(request.Context(), requestutil.ID(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, saved)
}

type multiResizeRequest struct {
	Sizes map[string]SizeRequest `json:"sizes"`
}

/*
POST /api/v1/editor/sessions/{id}/multi-resize.

Request:
  - sizes: map of size name to {width, height, crop}

Response:
  - 200: map of size name to SavedImage (without path)
*/
func (handler *Handler) multiResize(writer http.ResponseWriter, request *http.Request) {
	var input multiResizeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	metadata, err := handler.service.MultiResize(request.Context(), requestutil.ID(request, "id"), input.Sizes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, metadata)
}

/*
DELETE /api/v1/editor/sessions/{id}.

Response:
  - 204: No Content
*/
func (handler *Handler) close(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Close(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
