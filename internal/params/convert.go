// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"reflect"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// parseBool accepts the spellings browsers and CLIs tend to send.
func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	}
	return false, false
}

// convertScalar turns one textual value into a value of type t.
func convertScalar(raw string, t reflect.Type) (reflect.Value, *problem) {
	out := reflect.New(t).Elem()

	switch {
	case t == uuidType || t == rawUUIDType:
		u, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return out, &problemUUID
		}
		if t == uuidType {
			out.Set(reflect.ValueOf(UUID{UUID: u}))
		} else {
			out.Set(reflect.ValueOf(u))
		}
		return out, nil

	case t == dateTimeType || t == timeType:
		dt, err := ParseDateTime(strings.TrimSpace(raw))
		if err != nil {
			return out, &problemDate
		}
		if t == dateTimeType {
			out.Set(reflect.ValueOf(dt))
		} else {
			out.Set(reflect.ValueOf(dt.Time))
		}
		return out, nil

	case t == timeOfDayType:
		tod, err := ParseTimeOfDay(strings.TrimSpace(raw))
		if err != nil {
			return out, &problemTime
		}
		out.Set(reflect.ValueOf(tod))
		return out, nil

	case t.Kind() == reflect.String:
		if values, ok := enumValues(t); ok && !slices.Contains(values, raw) {
			p := problemEnum(values)
			return out, &p
		}
		out.SetString(raw)
		return out, nil

	case t.Kind() == reflect.Bool:
		b, ok := parseBool(raw)
		if !ok {
			return out, &problemBool
		}
		out.SetBool(b)
		return out, nil
	}

	ptr := reflect.New(t)
	if err := runtime.BindStringToObject(strings.TrimSpace(raw), ptr.Interface()); err != nil {
		switch t.Kind() {
		case reflect.Float32, reflect.Float64:
			return out, &problemFloat
		default:
			return out, &problemInteger
		}
	}
	return ptr.Elem(), nil
}
