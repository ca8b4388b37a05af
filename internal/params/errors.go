// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTarget is returned when Bind or DecodeJSON receive something
	// other than a non-nil pointer to a struct (or slice/map for bodies).
	ErrInvalidTarget = errors.New("params: target must be a non-nil pointer")

	// ErrBodyTooLarge is returned when the request body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("params: request body too large")

	// ErrMalformedForm is returned when a form or multipart body cannot be parsed.
	ErrMalformedForm = errors.New("params: malformed form body")
)

// Error type identifiers reported in FieldError.Type.
const (
	TypeMissing    = "value_error.missing"
	TypeInteger    = "type_error.integer"
	TypeFloat      = "type_error.float"
	TypeBool       = "type_error.bool"
	TypeString     = "type_error.str"
	TypeEnum       = "type_error.enum"
	TypeUUID       = "type_error.uuid"
	TypeDict       = "type_error.dict"
	TypeList       = "type_error.list"
	TypeNotGE      = "value_error.number.not_ge"
	TypeNotGT      = "value_error.number.not_gt"
	TypeNotLE      = "value_error.number.not_le"
	TypeNotLT      = "value_error.number.not_lt"
	TypeMinLength  = "value_error.any_str.min_length"
	TypeMaxLength  = "value_error.any_str.max_length"
	TypeMinItems   = "value_error.list.min_items"
	TypeMaxItems   = "value_error.list.max_items"
	TypeRegex      = "value_error.str.regex"
	TypeEmail      = "value_error.email"
	TypeURLScheme  = "value_error.url.scheme"
	TypeDateTime   = "value_error.datetime"
	TypeTime       = "value_error.time"
	TypeJSONDecode = "value_error.jsondecode"
	TypeConst      = "value_error.const"
)

// FieldError describes one rejected input.
type FieldError struct {
	Loc  []any          `json:"loc"`
	Msg  string         `json:"msg"`
	Type string         `json:"type"`
	Ctx  map[string]any `json:"ctx,omitempty"`
}

// ValidationError aggregates every FieldError found while binding a request.
// Body holds what the client sent when the failure concerns a body.
type ValidationError struct {
	Errors []FieldError
	Body   any
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", joinLoc(fe.Loc), fe.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Append merges other into e. Nil and non-validation errors are ignored.
func (e *ValidationError) Append(other error) {
	var ve *ValidationError
	if errors.As(other, &ve) {
		e.Errors = append(e.Errors, ve.Errors...)
		if e.Body == nil {
			e.Body = ve.Body
		}
	}
}

// OrNil returns nil when no errors were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func joinLoc(loc []any) string {
	parts := make([]string, 0, len(loc))
	for _, p := range loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".")
}

// problem is a location-free FieldError produced by conversion and validation.
type problem struct {
	msg string
	typ string
	ctx map[string]any
}

func (p problem) at(loc ...any) FieldError {
	return FieldError{Loc: loc, Msg: p.msg, Type: p.typ, Ctx: p.ctx}
}

var (
	problemMissing = problem{msg: "field required", typ: TypeMissing}
	problemInteger = problem{msg: "value is not a valid integer", typ: TypeInteger}
	problemFloat   = problem{msg: "value is not a valid float", typ: TypeFloat}
	problemBool    = problem{msg: "value could not be parsed to a boolean", typ: TypeBool}
	problemString  = problem{msg: "str type expected", typ: TypeString}
	problemUUID    = problem{msg: "value is not a valid uuid", typ: TypeUUID}
	problemDict    = problem{msg: "value is not a valid dict", typ: TypeDict}
	problemList    = problem{msg: "value is not a valid list", typ: TypeList}
	problemDate    = problem{msg: "invalid datetime format", typ: TypeDateTime}
	problemTime    = problem{msg: "invalid time format", typ: TypeTime}
)

func problemEnum(values []string) problem {
	quoted := make([]string, 0, len(values))
	anyValues := make([]any, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "'"+v+"'")
		anyValues = append(anyValues, v)
	}
	return problem{
		msg: "value is not a valid enumeration member; permitted: " + strings.Join(quoted, ", "),
		typ: TypeEnum,
		ctx: map[string]any{"enum_values": anyValues},
	}
}

// Missing builds the FieldError reported for an absent required input.
func Missing(loc ...any) FieldError {
	return problemMissing.at(loc...)
}

// NotInteger builds the FieldError reported when a value is not an integer.
func NotInteger(loc ...any) FieldError {
	return problemInteger.at(loc...)
}
