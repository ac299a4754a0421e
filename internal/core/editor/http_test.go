// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package editor_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mediagate/internal/core/editor"
	"github.com/taibuivan/mediagate/internal/platform/apperr"
)

func newRouter(f *fixture) http.Handler {
	router := chi.NewRouter()
	router.Mount("/api/v1/editor/sessions", editor.NewHandler(f.service).Routes())
	return router
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

type sessionEnvelope struct {
	Data struct {
		ID        string           `json:"id"`
		State     editor.State     `json:"state"`
		Transform editor.Transform `json:"transform"`
	} `json:"data"`
}

func TestHandler_SessionFlow(t *testing.T) {
	f := newFixture(t, true)
	router := newRouter(f)

	// Open.
	recorder := do(t, router, http.MethodPost, "/api/v1/editor/sessions", `{"path": "`+original+`", "quality": 80}`)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var opened sessionEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &opened))
	id := opened.Data.ID
	assert.Equal(t, 80, opened.Data.Transform.Quality)
	assert.Equal(t, 120, opened.Data.Transform.Width)

	// Operations.
	recorder = do(t, router, http.MethodPost, "/api/v1/editor/sessions/"+id+"/operations",
		`{"operations": [{"op": "resize", "width": 50, "height": 50, "crop": true}, {"op": "flip", "vertical": true}]}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var applied sessionEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &applied))
	assert.Equal(t, "h", applied.Data.Transform.Flip)
	assert.Equal(t, 50, applied.Data.Transform.Width)

	// Get.
	recorder = do(t, router, http.MethodGet, "/api/v1/editor/sessions/"+id, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	// URL.
	recorder = do(t, router, http.MethodGet, "/api/v1/editor/sessions/"+id+"/url", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "https://demo.imgix.net/2020/05/photo.png?")

	// Stream.
	recorder = do(t, router, http.MethodGet, "/api/v1/editor/sessions/"+id+"/stream", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "rendered", recorder.Body.String())

	// Save without a body.
	recorder = do(t, router, http.MethodPost, "/api/v1/editor/sessions/"+id+"/save", "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Contains(t, recorder.Body.String(), `"file":"photo-50x50.png"`)
	assert.Contains(t, recorder.Body.String(), `"mime-type":"image/png"`)

	// Multi-resize.
	recorder = do(t, router, http.MethodPost, "/api/v1/editor/sessions/"+id+"/multi-resize",
		`{"sizes": {"small": {"width": 25, "height": 25, "crop": true}}}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resized struct {
		Data map[string]editor.SavedImage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resized))
	assert.Equal(t, editor.SavedImage{File: "photo-25x25.png", Width: 25, Height: 25, MimeType: "image/png"}, resized.Data["small"])

	// Close.
	recorder = do(t, router, http.MethodDelete, "/api/v1/editor/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = do(t, router, http.MethodGet, "/api/v1/editor/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandler_Errors(t *testing.T) {
	f := newFixture(t, true)
	router := newRouter(f)
	session := f.open(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"open_bad_json", http.MethodPost, "/api/v1/editor/sessions", `{`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"open_unsupported", http.MethodPost, "/api/v1/editor/sessions", `{"path": "wp-content/uploads/a.svg"}`, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		{"get_bad_id", http.MethodGet, "/api/v1/editor/sessions/nope", "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"operations_bad_json", http.MethodPost, "/api/v1/editor/sessions/" + session.ID + "/operations", `[]`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"operations_refused", http.MethodPost, "/api/v1/editor/sessions/" + session.ID + "/operations", `{"operations": [{"op": "resize", "width": 999}]}`, http.StatusUnprocessableEntity, "UNPROCESSABLE"},
		{"save_bad_mime", http.MethodPost, "/api/v1/editor/sessions/" + session.ID + "/save", `{"mime_type": "image/bmp"}`, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := do(t, router, tc.method, tc.target, tc.body)
			assert.Equal(t, tc.status, recorder.Code, recorder.Body.String())
			assert.Contains(t, recorder.Body.String(), `"code":"`+tc.code+`"`)
		})
	}
}

func TestHandler_Stream_BadGateway(t *testing.T) {
	f := newFixture(t, true)
	router := newRouter(f)
	session := f.open(t)
	f.fetcher.err = apperr.BadGateway(io.ErrUnexpectedEOF)

	recorder := do(t, router, http.MethodGet, "/api/v1/editor/sessions/"+session.ID+"/stream", "")
	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/missing.png" {
			http.NotFound(writer, request)
			return
		}
		writer.Header().Set("Content-Type", "image/webp")
		_, _ = writer.Write([]byte("pixels"))
	}))
	t.Cleanup(server.Close)

	fetcher := editor.NewHTTPFetcher(server.Client())

	body, contentType, err := fetcher.Fetch(context.Background(), server.URL+"/photo.png?w=10")
	require.NoError(t, err)
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "pixels", string(raw))
	assert.Equal(t, "image/webp", contentType)

	_, _, err = fetcher.Fetch(context.Background(), server.URL+"/missing.png")
	assertStatus(t, err, http.StatusBadGateway)

	server.Close()
	_, _, err = fetcher.Fetch(context.Background(), server.URL+"/photo.png")
	assertStatus(t, err, http.StatusBadGateway)
}
