// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mediagate/internal/platform/constants"
	"github.com/taibuivan/mediagate/internal/platform/ctxutil"
	"github.com/taibuivan/mediagate/internal/platform/requestutil"
	"github.com/taibuivan/mediagate/internal/platform/respond"
	"github.com/taibuivan/mediagate/internal/platform/validate"
	"github.com/taibuivan/mediagate/pkg/unipath"
)

// Content rewriting modes.
const (
	// PerformanceFast rewrites the submitted fragment only.
	PerformanceFast = "fast"
	// PerformanceThorough treats the body as a complete page and also adds the
	// DNS prefetch tag to its head.
	PerformanceThorough = "thorough"
)

// Prefetcher provides the DNS prefetch hints for the Imgix host.
type Prefetcher interface {
	PrefetchLink() string
	PrefetchTag() string
}

// # Handler Implementation

// Handler exposes the translator over HTTP.
type Handler struct {
	service     *Service
	content     *ContentRewriter
	prefetch    Prefetcher
	performance string
}

// NewHandler constructs a new translate [Handler]. performance is
// [PerformanceFast] or [PerformanceThorough].
func NewHandler(service *Service, content *ContentRewriter, prefetch Prefetcher, performance string) *Handler {
	return &Handler{service: service, content: content, prefetch: prefetch, performance: performance}
}

// Routes returns the JSON and content endpoints, mounted under /api/v1.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/translate", handler.translate)
	router.Post("/content/translate", handler.translateContent)
	router.Post("/content/srcset", handler.translateSrcset)

	return router
}

// ProxyRoutes returns the image proxy, mounted at the proxy prefix.
func (handler *Handler) ProxyRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/*", handler.proxy)
	return router
}

/*
GET {PROXY_PREFIX}/*.

Description: The web server rewrites requests for missing generated sizes
here. The wildcard is the requested path relative to the WordPress root.

Response:
  - 302: Location is the Imgix URL
  - 404: "404 Not Found" when the path could not be translated
*/
func (handler *Handler) proxy(writer http.ResponseWriter, request *http.Request) {
	requested := unipath.Clean(requestutil.Wildcard(request))

	result := handler.service.Translate(request.Context(), requested)
	if !result.Translated {
		ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "proxy_not_found", slog.String("path", requested))
		respond.PlainNotFound(writer)
		return
	}

	ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "proxy_redirect",
		slog.String("path", requested),
		slog.String("location", result.Value),
	)
	http.Redirect(writer, request, result.Value, http.StatusFound)
}

/*
GET /api/v1/translate.

Request:
  - path: string (relative to the WordPress root)

Response:
  - 200: Result
*/
func (handler *Handler) translate(writer http.ResponseWriter, request *http.Request) {
	requested := requestutil.Query(request, "path")

	v := &validate.Validator{}
	if err := v.Required("path", requested).MaxLen("path", requested, 2048).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.service.Translate(request.Context(), unipath.Clean(requested)))
}

/*
POST /api/v1/content/translate.

Description: Rewrites every upload URL in an HTML fragment. The response
carries the DNS prefetch hint for the Imgix host. In thorough mode the body is
a complete page and the hint is also added to its head.

Request:
  - body: text/html

Response:
  - 200: the rewritten document
*/
func (handler *Handler) translateContent(writer http.ResponseWriter, request *http.Request) {
	body, err := requestutil.ReadBody(request, constants.MaxContentBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var content string
	if handler.performance == PerformanceThorough {
		content, _ = handler.content.RewriteDocument(request.Context(), body, handler.prefetch.PrefetchTag())
	} else {
		content, _ = handler.content.Rewrite(request.Context(), body)
	}

	writer.Header().Add(constants.HeaderLink, handler.prefetch.PrefetchLink())
	respond.HTML(writer, http.StatusOK, content)
}

type srcsetRequest struct {
	Sources []SrcsetSource `json:"sources"`
}

/*
POST /api/v1/content/srcset.

Request:
  - sources: []SrcsetSource (absolute URLs on the site)

Response:
  - 200: []SrcsetSource with translated URLs
*/
func (handler *Handler) translateSrcset(writer http.ResponseWriter, request *http.Request) {
	var input srcsetRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	for _, source := range input.Sources {
		v.Required("sources.url", source.URL)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.content.Srcset(request.Context(), input.Sources))
}
