// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Enum is implemented by string types that only accept a closed set of values.
type Enum interface {
	EnumValues() []string
}

var (
	enumType      = reflect.TypeOf((*Enum)(nil)).Elem()
	flexIntType   = reflect.TypeOf(FlexInt(0))
	flexFloatType = reflect.TypeOf(FlexFloat(0))
	uuidType      = reflect.TypeOf(UUID{})
	rawUUIDType   = reflect.TypeOf(uuid.UUID{})
	dateTimeType  = reflect.TypeOf(DateTime{})
	timeOfDayType = reflect.TypeOf(TimeOfDay{})
	timeType      = reflect.TypeOf(time.Time{})
)

func enumValues(t reflect.Type) ([]string, bool) {
	if t.Implements(enumType) {
		return reflect.Zero(t).Interface().(Enum).EnumValues(), true
	}
	return nil, false
}

// unquoteLenient strips JSON string quotes so numeric strings can be coerced.
func unquoteLenient(data []byte) (string, bool) {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return "", false
		}
		return strings.TrimSpace(unq), true
	}
	return s, false
}

func jsonKind(data []byte) string {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "":
		return "empty"
	case s[0] == '"':
		return "string"
	case s[0] == '{':
		return "object"
	case s[0] == '[':
		return "array"
	case s == "true" || s == "false":
		return "bool"
	default:
		return "number"
	}
}

// FlexInt is an integer that also accepts numeric strings ("7900") and
// integral floats (79.0) when decoded from JSON.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s, _ := unquoteLenient(data)
	if s == "null" {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = FlexInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && f == math.Trunc(f) {
		*n = FlexInt(int64(f))
		return nil
	}
	return &json.UnmarshalTypeError{Value: jsonKind(data), Type: flexIntType}
}

// FlexFloat is a float that also accepts numeric strings ("35.4") when decoded from JSON.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s, _ := unquoteLenient(data)
	if s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: flexFloatType}
	}
	*f = FlexFloat(v)
	return nil
}

// UUID wraps uuid.UUID so decoding failures keep their JSON field location.
type UUID struct {
	uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *UUID) UnmarshalJSON(data []byte) error {
	s, quoted := unquoteLenient(data)
	if !quoted {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: uuidType}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string", Type: uuidType}
	}
	u.UUID = parsed
	return nil
}

// DateTime accepts RFC 3339 timestamps as well as the space separated and
// zone-less forms clients commonly send.
type DateTime struct {
	time.Time
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// ParseDateTime parses s with the accepted layouts.
func ParseDateTime(s string) (DateTime, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{Time: t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid datetime %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	s, quoted := unquoteLenient(data)
	if s == "null" && !quoted {
		return nil
	}
	if !quoted {
		// Unix seconds are accepted as well.
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			d.Time = time.Unix(secs, 0).UTC()
			return nil
		}
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: dateTimeType}
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string", Type: dateTimeType}
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall clock time without a date, rendered as HH:MM:SS.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts HH:MM, HH:MM:SS and HH:MM:SS.fraction.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time %q", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// MarshalJSON implements json.Marshaler.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, quoted := unquoteLenient(data)
	if s == "null" && !quoted {
		return nil
	}
	if !quoted {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: timeOfDayType}
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string", Type: timeOfDayType}
	}
	*t = parsed
	return nil
}
