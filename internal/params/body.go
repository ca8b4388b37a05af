// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
)

// DecodeJSON reads the request body into dst and validates the result.
// Decoding and validation failures are returned as a *ValidationError that
// carries the received body.
func (b *Binder) DecodeJSON(r *http.Request, dst any) error {
	data, err := b.ReadBody(r)
	if err != nil {
		return err
	}
	return b.DecodeBytes(data, dst)
}

// ReadBody reads the request body up to the configured limit.
func (b *Binder) ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, b.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// DecodeBytes is DecodeJSON over an already read body. Type mismatches do
// not stop decoding: every field is still decoded and validated, and all
// problems are reported together in field order.
func (b *Binder) DecodeBytes(data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, dst)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &ValidationError{Errors: []FieldError{problemMissing.at(string(InBody))}}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return &ValidationError{Errors: []FieldError{decodeProblem(err)}, Body: EchoBody(data)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		off := dec.InputOffset()
		return &ValidationError{
			Errors: []FieldError{{
				Loc:  []any{string(InBody), off},
				Msg:  "Extra data",
				Type: TypeJSONDecode,
				Ctx:  map[string]any{"pos": off},
			}},
			Body: EchoBody(data),
		}
	}

	d := newBodyDecoder()
	d.decode(raw, rv.Elem(), []any{string(InBody)})
	if errs := d.merge(validateValue(rv, string(InBody))); len(errs) > 0 {
		return &ValidationError{Errors: errs, Body: EchoBody(data)}
	}
	return nil
}

// Validate runs struct validation on v, reporting locations below loc.
func (b *Binder) Validate(v any, loc ...any) error {
	errs := validateValue(reflect.ValueOf(v), loc...)
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs, Body: v}
}

func validateValue(v reflect.Value, prefix ...any) []FieldError {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		if isScalarStruct(v.Type()) {
			return nil
		}
		return checkStruct(v.Interface(), prefix...)
	case reflect.Slice, reflect.Array:
		var errs []FieldError
		for i := 0; i < v.Len(); i++ {
			loc := append(append([]any{}, prefix...), i)
			errs = append(errs, validateValue(v.Index(i), loc...)...)
		}
		return errs
	}
	return nil
}

func decodeProblem(err error) FieldError {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return FieldError{
			Loc:  []any{string(InBody), syntaxErr.Offset},
			Msg:  syntaxErr.Error(),
			Type: TypeJSONDecode,
			Ctx:  map[string]any{"pos": syntaxErr.Offset},
		}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return FieldError{Loc: []any{string(InBody)}, Msg: "unexpected end of JSON input", Type: TypeJSONDecode}
	}
	return FieldError{Loc: []any{string(InBody)}, Msg: err.Error(), Type: TypeJSONDecode}
}

func typeProblem(t reflect.Type) problem {
	if t == nil {
		return problem{msg: "invalid value", typ: "type_error"}
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case uuidType, rawUUIDType:
		return problemUUID
	case dateTimeType, timeType:
		return problemDate
	case timeOfDayType:
		return problemTime
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return problemDict
	case reflect.Slice, reflect.Array:
		return problemList
	case reflect.Bool:
		return problemBool
	case reflect.String:
		return problemString
	case reflect.Float32, reflect.Float64:
		return problemFloat
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return problemInteger
	}
	return problem{msg: "invalid value", typ: "type_error"}
}

// EchoBody returns what the client sent in a form fit for a JSON response.
func EchoBody(data []byte) any {
	if json.Valid(data) {
		return json.RawMessage(append([]byte(nil), data...))
	}
	return string(data)
}
