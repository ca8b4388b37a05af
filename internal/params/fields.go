// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"fmt"
	"net/textproto"
	"reflect"
	"strings"
	"sync"
)

// Location names where a parameter is read from.
type Location string

const (
	InPath   Location = "path"
	InQuery  Location = "query"
	InHeader Location = "header"
	InCookie Location = "cookie"
	InForm   Location = "form"
	InFile   Location = "file"
	InBody   Location = "body"
)

// locationTags lists the struct tags that declare a parameter, in lookup order.
var locationTags = []Location{InPath, InQuery, InHeader, InCookie, InForm, InFile}

// ErrorLoc is the first element of FieldError.Loc for this location.
// Form fields and files travel in the body and are reported there.
func (l Location) ErrorLoc() string {
	switch l {
	case InForm, InFile:
		return string(InBody)
	default:
		return string(l)
	}
}

// Field is the parsed declaration of one parameter.
type Field struct {
	Index       []int
	GoName      string
	Name        string // name on the wire
	In          Location
	Type        reflect.Type
	Required    bool
	Default     *string
	Validate    string
	Title       string
	Description string
	Deprecated  bool
	Hidden      bool
	Example     string
}

// Elem returns the scalar type behind pointers and slices.
func (f Field) Elem() reflect.Type {
	t := f.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f.Multi() {
		t = t.Elem()
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
	}
	return t
}

// Multi reports whether the parameter collects repeated values.
func (f Field) Multi() bool {
	t := f.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Slice
}

// EnumValues returns the permitted values when the parameter is an Enum.
func (f Field) EnumValues() ([]string, bool) {
	return enumValues(f.Elem())
}

var fieldCache sync.Map // reflect.Type -> []Field

// Describe returns the parameter declarations of struct type t.
// Results are cached per type.
func Describe(t reflect.Type) ([]Field, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTarget, t)
	}
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]Field), nil
	}

	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		f, ok, err := parseField(sf)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), sf.Name, err)
		}
		if !ok {
			continue
		}
		f.Index = sf.Index
		fields = append(fields, f)
	}

	fieldCache.Store(t, fields)
	return fields, nil
}

func parseField(sf reflect.StructField) (Field, bool, error) {
	var (
		in    Location
		value string
		found bool
	)
	for _, loc := range locationTags {
		if v, ok := sf.Tag.Lookup(string(loc)); ok {
			if found {
				return Field{}, false, fmt.Errorf("declares both %q and %q", in, loc)
			}
			in, value, found = loc, v, true
		}
	}
	if !found {
		return Field{}, false, nil
	}

	name, opts, _ := strings.Cut(value, ",")
	if name == "" {
		name = strings.ToLower(sf.Name)
	}
	if in == InHeader && !hasOption(opts, "raw") {
		name = textproto.CanonicalMIMEHeaderKey(strings.ReplaceAll(name, "_", "-"))
	}

	f := Field{
		GoName:      sf.Name,
		Name:        name,
		In:          in,
		Type:        sf.Type,
		Validate:    sf.Tag.Get("validate"),
		Title:       sf.Tag.Get("title"),
		Description: sf.Tag.Get("doc"),
		Deprecated:  sf.Tag.Get("deprecated") == "true",
		Hidden:      sf.Tag.Get("hidden") == "true",
		Example:     sf.Tag.Get("example"),
	}
	if def, ok := sf.Tag.Lookup("default"); ok {
		f.Default = &def
	}

	switch in {
	case InFile:
		if f.Elem() != reflect.TypeOf(UploadFile{}) {
			return Field{}, false, fmt.Errorf("file parameters must be UploadFile, *UploadFile or []UploadFile, got %s", sf.Type)
		}
	default:
		if k := f.Elem().Kind(); k == reflect.Map || (k == reflect.Struct && !isScalarStruct(f.Elem())) {
			return Field{}, false, fmt.Errorf("unsupported parameter type %s", sf.Type)
		}
	}

	// Path parameters are always required; pointers and slices are optional.
	switch {
	case in == InPath:
		f.Required = true
	case sf.Type.Kind() == reflect.Ptr, f.Multi():
		f.Required = false
	default:
		f.Required = f.Default == nil
	}
	return f, true, nil
}

func isScalarStruct(t reflect.Type) bool {
	switch t {
	case uuidType, dateTimeType, timeOfDayType, timeType:
		return true
	}
	return false
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == want {
			return true
		}
	}
	return false
}
