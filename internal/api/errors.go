// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ManuGH/paramlab/internal/api/middleware"
	"github.com/ManuGH/paramlab/internal/catalog"
	"github.com/ManuGH/paramlab/internal/log"
	"github.com/ManuGH/paramlab/internal/metrics"
	"github.com/ManuGH/paramlab/internal/params"
)

// HTTPError is an error with a status code, rendered as {"detail": ...}.
type HTTPError struct {
	Status  int
	Detail  string
	Headers map[string]string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
}

// UnicornError is raised by the unicorn handler for the one name it refuses.
type UnicornError struct {
	Name string
}

func (e *UnicornError) Error() string {
	return "unicorn " + e.Name + " misbehaved"
}

var (
	errNotFound         = &HTTPError{Status: http.StatusNotFound, Detail: "Not Found"}
	errMethodNotAllowed = &HTTPError{Status: http.StatusMethodNotAllowed, Detail: "Method Not Allowed"}
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Detail []params.FieldError `json:"detail"`
	Body   any                 `json:"body"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// handlerFunc is an http.HandlerFunc that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts h, translating returned errors into responses.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.writeError(w, r, err)
		}
	}
}

// writeError maps err onto the error vocabulary clients see.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var (
		verr     *params.ValidationError
		unicorn  *UnicornError
		httpErr  *HTTPError
		domErr   *catalog.Error
		tooLarge = errors.Is(err, params.ErrBodyTooLarge)
	)
	switch {
	case errors.As(err, &verr):
		errs := verr.Errors
		if errs == nil {
			errs = []params.FieldError{}
		}
		metrics.RecordValidationFailures(middleware.RoutePattern(r), validationFailures(errs))
		logger.Debug().
			Str(log.FieldEvent, "request.invalid").
			Int("errors", len(errs)).
			Msg("request validation failed")
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Detail: errs, Body: verr.Body})
	case errors.As(err, &unicorn):
		writeJSON(w, http.StatusTeapot, messageResponse{
			Message: fmt.Sprintf("Oops! %s did something. There goes a rainbow...", unicorn.Name),
		})
	case errors.As(err, &httpErr):
		s.writeHTTPError(w, logger, httpErr)
	case errors.As(err, &domErr):
		s.writeHTTPError(w, logger, &HTTPError{Status: domErr.Status, Detail: domErr.Detail, Headers: domErr.Headers})
	case tooLarge:
		s.writeHTTPError(w, logger, &HTTPError{Status: http.StatusRequestEntityTooLarge, Detail: "Request body too large"})
	case errors.Is(err, params.ErrMalformedForm):
		s.writeHTTPError(w, logger, &HTTPError{Status: http.StatusBadRequest, Detail: "There was an error parsing the body"})
	default:
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "request.failed").
			Str(log.FieldMethod, r.Method).
			Str(log.FieldPath, r.URL.Path).
			Msg("handler failed")
		writeJSON(w, http.StatusInternalServerError, detailResponse{Detail: "Internal Server Error"})
	}
}

func validationFailures(errs []params.FieldError) []metrics.ValidationFailure {
	out := make([]metrics.ValidationFailure, 0, len(errs))
	for _, e := range errs {
		loc := "unknown"
		if len(e.Loc) > 0 {
			if s, ok := e.Loc[0].(string); ok {
				loc = s
			}
		}
		out = append(out, metrics.ValidationFailure{Location: loc, Type: e.Type})
	}
	return out
}

// writeHTTPError logs and renders an HTTP error: warn for 4xx, error for 5xx.
func (s *Server) writeHTTPError(w http.ResponseWriter, logger zerolog.Logger, e *HTTPError) {
	ev := logger.Warn()
	if e.Status >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Str(log.FieldEvent, "request.http_error").
		Int(log.FieldStatus, e.Status).
		Str("detail", e.Detail).
		Msg("http error")

	for k, v := range e.Headers {
		w.Header().Set(k, v)
	}
	writeJSON(w, e.Status, detailResponse{Detail: e.Detail})
}
