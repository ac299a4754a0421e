// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mediagate/internal/platform/apperr"
	"github.com/taibuivan/mediagate/internal/platform/constants"
	"github.com/taibuivan/mediagate/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	body := http.MaxBytesReader(nil, request.Body, constants.MaxJSONBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ReadBody reads a raw request body up to limit bytes.

Returns:
  - string: the body
  - error: a VALIDATION_ERROR when the body is larger than limit
*/
func ReadBody(request *http.Request, limit int64) (string, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, request.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", apperr.ValidationError("Request body is too large")
		}
		return "", apperr.ValidationError("Request body could not be read")
	}
	return string(raw), nil
}

/*
ID retrieves a named URL parameter (session id) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Wildcard retrieves the path matched by a trailing `*` route pattern.
*/
func Wildcard(request *http.Request) string {
	return chi.URLParam(request, "*")
}

/*
Query retrieves a query string value.
*/
func Query(request *http.Request, name string) string {
	return request.URL.Query().Get(name)
}
