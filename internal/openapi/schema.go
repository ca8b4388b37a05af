// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openapi

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/ManuGH/paramlab/internal/params"
)

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

	uuidType      = reflect.TypeOf(params.UUID{})
	dateTimeType  = reflect.TypeOf(params.DateTime{})
	timeOfDayType = reflect.TypeOf(params.TimeOfDay{})
)

// SchemaFor generates the JSON schema of v's type. Struct tags drive the
// result: json names, validate bounds and formats, title, doc and example.
func SchemaFor(v any) (*openapi3.SchemaRef, error) {
	return openapi3gen.NewSchemaRefForValue(v, nil, openapi3gen.SchemaCustomizer(customize))
}

func customize(name string, t reflect.Type, tag reflect.StructTag, schema *openapi3.Schema) error {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case uuidType:
		*schema = *openapi3.NewUUIDSchema()
	case dateTimeType:
		*schema = *openapi3.NewDateTimeSchema()
	case timeOfDayType:
		*schema = *openapi3.NewStringSchema().WithFormat("time")
	}
	if values, ok := reflect.Zero(t).Interface().(params.Enum); ok && len(schema.Enum) == 0 {
		for _, v := range values.EnumValues() {
			schema.Enum = append(schema.Enum, v)
		}
	}

	if t.Kind() == reflect.Struct && !isScalar(t) {
		schema.Required = mergeRequired(schema.Required, requiredFields(t))
		markNullable(t, schema)
	}

	if validate := tag.Get("validate"); validate != "" {
		applyConstraints(schema, t, false, validate)
	}
	if title := tag.Get("title"); title != "" {
		schema.Title = title
	}
	if doc := tag.Get("doc"); doc != "" {
		schema.Description = doc
	}
	if ex, ok := tag.Lookup("example"); ok {
		if v, ok := defaultValue(ex, t, false); ok {
			schema.Example = v
		} else {
			schema.Example = ex
		}
	}
	return nil
}

func isScalar(t reflect.Type) bool {
	return t == uuidType || t == dateTimeType || t == timeOfDayType
}

// requiredFields lists the json names of fields whose rules start with
// required, including fields promoted from embedded structs.
func requiredFields(t reflect.Type) []string {
	var out []string
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			et := sf.Type
			if et.Kind() == reflect.Ptr {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct && !isScalar(et) {
				out = append(out, requiredFields(et)...)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if hasRequiredRule(sf.Tag.Get("validate")) {
			out = append(out, name)
		}
	}
	return out
}

// hasRequiredRule reports whether the field itself, not its elements, is
// required.
func hasRequiredRule(validate string) bool {
	for _, rule := range strings.Split(validate, ",") {
		switch strings.TrimSpace(rule) {
		case "dive":
			return false
		case "required":
			return true
		}
	}
	return false
}

// markNullable flags properties that encode as null when unset: pointers,
// slices and maps without omitempty that are not required.
func markNullable(t reflect.Type, schema *openapi3.Schema) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		ft := sf.Type
		if sf.Anonymous {
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && !isScalar(ft) {
				markNullable(ft, schema)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" || strings.Contains(opts, "omitempty") || hasRequiredRule(sf.Tag.Get("validate")) {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		switch ft.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Map:
		default:
			continue
		}
		if ft.Kind() != reflect.Ptr && ft.Implements(jsonMarshalerType) {
			continue
		}
		if prop := schema.Properties[name]; prop != nil && prop.Value != nil {
			prop.Value.Nullable = true
		}
	}
}

func mergeRequired(have, add []string) []string {
	seen := make(map[string]bool, len(have))
	for _, n := range have {
		seen[n] = true
	}
	for _, n := range add {
		if !seen[n] {
			seen[n] = true
			have = append(have, n)
		}
	}
	return have
}
