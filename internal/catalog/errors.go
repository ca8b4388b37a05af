// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"net/http"
)

// Error is a domain failure with the HTTP status it maps to.
type Error struct {
	Status  int
	Detail  string
	Headers map[string]string
}

func (e *Error) Error() string { return e.Detail }

var (
	ErrItemNotFound    = &Error{Status: http.StatusNotFound, Detail: "Item not found."}
	ErrVehicleNotFound = &Error{Status: http.StatusNotFound, Detail: "Vehicle not found."}
	ErrBadCredentials  = &Error{
		Status:  http.StatusBadRequest,
		Detail:  "Incorrect username and/or password.",
		Headers: map[string]string{"X-Error": "There goes my error"},
	}
	ErrTooManyAttempts = &Error{Status: http.StatusTooManyRequests, Detail: "Too many failed login attempts."}
)
