// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrorHandler writes the response for an error returned by, or passed to
// Fail from, a handler.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// StatusError attaches an HTTP status to an error.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

// WithStatus wraps err with an HTTP status.
func WithStatus(status int, err error) error {
	return &StatusError{Status: status, Err: err}
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// DefaultErrorHandler replies with a JSON body carrying the status code,
// its text and the error message. Errors without a status are 500s.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var se *StatusError
	if errors.As(err, &se) && se.Status >= 400 {
		status = se.Status
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err,
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    err.Error(),
	})
}
