// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package openapi builds the OpenAPI 3 document of the API from the same
// declarations the handlers bind with.
package openapi

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/ManuGH/paramlab/internal/params"
)

// Version is the OpenAPI version the document targets.
const Version = "3.0.3"

// Example is a named request body example.
type Example struct {
	Summary     string
	Description string
	Value       any
}

// Route describes one operation. Params, Body and Response hold zero values
// of the types the handler binds and returns; nil means none.
type Route struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool

	Params       any
	Body         any
	BodyRequired bool
	// BodyEmbed wraps the body: {"<embed>": body}.
	BodyEmbed    string
	BodyExamples map[string]Example

	Status              int
	ResponseDescription string
	Response            any
}

// StatusCode returns the success status, 200 unless set.
func (r Route) StatusCode() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

// Info is the document metadata.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Build returns the document for routes.
func Build(info Info, routes []Route) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(),
	}

	seenTags := map[string]bool{}
	for _, rt := range routes {
		op, err := buildOperation(rt)
		if err != nil {
			return nil, fmt.Errorf("openapi: %s %s: %w", rt.Method, rt.Path, err)
		}
		doc.AddOperation(rt.Path, rt.Method, op)
		for _, tag := range rt.Tags {
			if !seenTags[tag] {
				seenTags[tag] = true
				doc.Tags = append(doc.Tags, &openapi3.Tag{Name: tag})
			}
		}
	}
	return doc, nil
}

func buildOperation(rt Route) (*openapi3.Operation, error) {
	op := &openapi3.Operation{
		OperationID: rt.OperationID,
		Summary:     rt.Summary,
		Description: rt.Description,
		Tags:        rt.Tags,
		Deprecated:  rt.Deprecated,
	}

	var fields []params.Field
	if rt.Params != nil {
		var err error
		fields, err = params.Describe(reflect.TypeOf(rt.Params))
		if err != nil {
			return nil, err
		}
	}

	var formFields []params.Field
	for _, f := range fields {
		switch {
		case f.Hidden:
			continue
		case f.In == params.InForm || f.In == params.InFile:
			formFields = append(formFields, f)
		default:
			op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: parameter(f)})
		}
	}

	switch {
	case len(formFields) > 0:
		op.RequestBody = &openapi3.RequestBodyRef{Value: formBody(formFields)}
	case rt.Body != nil:
		body, err := jsonBody(rt)
		if err != nil {
			return nil, err
		}
		op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	}

	respSchema, err := responseSchema(rt.Response)
	if err != nil {
		return nil, err
	}
	desc := rt.ResponseDescription
	if desc == "" {
		desc = "Successful Response"
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(rt.StatusCode(), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(respSchema),
		}),
	)
	if len(op.Parameters) > 0 || op.RequestBody != nil {
		op.Responses.Set(strconv.Itoa(http.StatusUnprocessableEntity), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Validation Error").WithJSONSchema(validationErrorSchema()),
		})
	}
	return op, nil
}

func parameter(f params.Field) *openapi3.Parameter {
	p := &openapi3.Parameter{
		Name:        f.Name,
		In:          string(f.In),
		Required:    f.Required,
		Description: f.Description,
		Deprecated:  f.Deprecated,
		Schema:      &openapi3.SchemaRef{Value: fieldSchema(f)},
	}
	if f.Example != "" {
		p.Example = f.Example
	}
	return p
}

// scalarSchema maps a Go parameter type to its schema.
func scalarSchema(t reflect.Type) *openapi3.Schema {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case reflect.TypeOf(params.UUID{}):
		return openapi3.NewUUIDSchema()
	case reflect.TypeOf(params.DateTime{}):
		return openapi3.NewDateTimeSchema()
	case reflect.TypeOf(params.TimeOfDay{}):
		return openapi3.NewStringSchema().WithFormat("time")
	case reflect.TypeOf(params.UploadFile{}):
		return openapi3.NewStringSchema().WithFormat("binary")
	}
	switch t.Kind() {
	case reflect.Bool:
		return openapi3.NewBoolSchema()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema()
	case reflect.Array:
		if t.Len() == 16 && t.Elem().Kind() == reflect.Uint8 {
			return openapi3.NewUUIDSchema()
		}
	}
	s := openapi3.NewStringSchema()
	if values, ok := reflect.Zero(t).Interface().(params.Enum); ok {
		enum := make([]any, 0, len(values.EnumValues()))
		for _, v := range values.EnumValues() {
			enum = append(enum, v)
		}
		s = s.WithEnum(enum...)
	}
	return s
}

func fieldSchema(f params.Field) *openapi3.Schema {
	elem := scalarSchema(f.Elem())
	elem.Title = f.Title

	s := elem
	if f.Multi() {
		s = openapi3.NewArraySchema().WithItems(elem)
		s.Title = f.Title
	}
	applyConstraints(s, f.Elem(), f.Multi(), f.Validate)
	if f.Default != nil {
		if v, ok := defaultValue(*f.Default, f.Elem(), f.Multi()); ok {
			s = s.WithDefault(v)
		}
	}
	return s
}

func defaultValue(raw string, t reflect.Type, multi bool) (any, bool) {
	if multi {
		parts := strings.Split(raw, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			v, ok := defaultValue(p, t, false)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	}
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		return b, err == nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		return n, err == nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		return f, err == nil
	case reflect.String:
		return raw, true
	}
	return nil, false
}

// applyConstraints copies validate rules onto s.
func applyConstraints(s *openapi3.Schema, t reflect.Type, multi bool, validate string) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, rule := range strings.Split(validate, ",") {
		name, param, _ := strings.Cut(strings.TrimSpace(rule), "=")
		switch name {
		case "dive":
			// Rules after dive apply to the elements.
			return
		case "email":
			s.Format = "email"
		case "httpurl", "url":
			s.Format = "uri"
		case "uuid", "uuid4":
			s.Format = "uuid"
		case "regex":
			s.Pattern = param
		case "unique":
			s.UniqueItems = true
		case "oneof":
			enum := make([]any, 0)
			for _, v := range strings.Fields(param) {
				enum = append(enum, v)
			}
			s.Enum = enum
		case "min", "max", "gte", "lte", "gt", "lt":
			applyBound(s, t, multi, name, param)
		}
	}
}

func applyBound(s *openapi3.Schema, t reflect.Type, multi bool, rule, param string) {
	n, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return
	}

	switch {
	case multi || t.Kind() == reflect.Slice || t.Kind() == reflect.Map:
		switch rule {
		case "min", "gte":
			s.WithMinItems(int64(n))
		case "max", "lte":
			s.WithMaxItems(int64(n))
		}
	case t.Kind() == reflect.String:
		switch rule {
		case "min", "gte":
			s.WithMinLength(int64(n))
		case "max", "lte":
			s.WithMaxLength(int64(n))
		}
	default:
		switch rule {
		case "min", "gte":
			s.WithMin(n).WithExclusiveMin(false)
		case "max", "lte":
			s.WithMax(n).WithExclusiveMax(false)
		case "gt":
			s.WithMin(n).WithExclusiveMin(true)
		case "lt":
			s.WithMax(n).WithExclusiveMax(true)
		}
	}
}

func formBody(fields []params.Field) *openapi3.RequestBody {
	schema := openapi3.NewObjectSchema()
	contentType := "application/x-www-form-urlencoded"
	required := false
	for _, f := range fields {
		fs := fieldSchema(f)
		fs.Description = f.Description
		schema.WithProperty(f.Name, fs)
		if f.Required {
			schema.Required = append(schema.Required, f.Name)
			required = true
		}
		if f.In == params.InFile {
			contentType = "multipart/form-data"
		}
	}
	return &openapi3.RequestBody{
		Required: required,
		Content: openapi3.Content{
			contentType: &openapi3.MediaType{Schema: &openapi3.SchemaRef{Value: schema}},
		},
	}
}

func jsonBody(rt Route) (*openapi3.RequestBody, error) {
	ref, err := SchemaFor(rt.Body)
	if err != nil {
		return nil, err
	}
	if rt.BodyEmbed != "" {
		wrapper := openapi3.NewObjectSchema().WithPropertyRef(rt.BodyEmbed, ref)
		if rt.BodyRequired {
			wrapper.Required = []string{rt.BodyEmbed}
		}
		ref = &openapi3.SchemaRef{Value: wrapper}
	}
	mt := &openapi3.MediaType{Schema: ref}
	if len(rt.BodyExamples) > 0 {
		mt.Examples = openapi3.Examples{}
		for name, ex := range rt.BodyExamples {
			mt.Examples[name] = &openapi3.ExampleRef{Value: &openapi3.Example{
				Summary:     ex.Summary,
				Description: ex.Description,
				Value:       ex.Value,
			}}
		}
	}
	return &openapi3.RequestBody{
		Required: rt.BodyRequired,
		Content:  openapi3.Content{"application/json": mt},
	}, nil
}

func responseSchema(v any) (*openapi3.SchemaRef, error) {
	if v == nil {
		return &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}, nil
	}
	return SchemaFor(v)
}

func validationErrorSchema() *openapi3.Schema {
	loc := openapi3.NewArraySchema().WithItems(openapi3.NewSchema())
	loc.Title = "Location"
	item := openapi3.NewObjectSchema().
		WithProperty("loc", loc).
		WithProperty("msg", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("ctx", openapi3.NewObjectSchema())
	item.Title = "ValidationError"
	item.Required = []string{"loc", "msg", "type"}

	body := openapi3.NewSchema()
	body.Nullable = true
	s := openapi3.NewObjectSchema().
		WithProperty("detail", openapi3.NewArraySchema().WithItems(item)).
		WithProperty("body", body)
	s.Title = "HTTPValidationError"
	return s
}
