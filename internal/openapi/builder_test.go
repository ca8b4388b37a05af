// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/paramlab/internal/params"
)

type color string

func (color) EnumValues() []string { return []string{"red", "green"} }

type widgetParams struct {
	WidgetID int          `path:"widget_id" validate:"gte=1,lte=999" title:"Widget"`
	Q        *string      `query:"q" validate:"omitempty,min=3,max=50,regex=^fixed" doc:"Search text"`
	Limit    int          `query:"limit" default:"10"`
	Tags     []string     `query:"tag" default:"a,b"`
	Color    *color       `query:"color"`
	Token    string       `header:"x_token" deprecated:"true"`
	Secret   *string      `query:"secret" hidden:"true"`
	Session  *string      `cookie:"session" example:"abc"`
	Ratio    *float64     `query:"ratio" validate:"omitempty,gt=0,lt=1"`
	Enabled  *bool        `query:"enabled"`
	ID       *params.UUID `query:"id"`
}

type widget struct {
	Name  string           `json:"name" validate:"required"`
	Price params.FlexInt   `json:"price" validate:"required,gt=100" title:"Price"`
	Tax   *float64         `json:"tax,omitempty"`
	Email string           `json:"email,omitempty" validate:"omitempty,email"`
	When  *params.DateTime `json:"when,omitempty"`
	Tags  []string         `json:"tags" validate:"unique"`
}

type uploadParams struct {
	Token string              `form:"token"`
	Files []params.UploadFile `file:"files"`
}

type loginParams struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func testRoutes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/widgets/{widget_id}", OperationID: "read_widget", Tags: []string{"widgets"}, Params: widgetParams{}},
		{
			Method: http.MethodPost, Path: "/widgets/", OperationID: "create_widget", Tags: []string{"widgets"},
			Body: widget{}, BodyRequired: true, Response: widget{}, Status: http.StatusCreated,
			BodyExamples: map[string]Example{"normal": {Summary: "A normal example", Value: map[string]any{"name": "Foo", "price": 200}}},
		},
		{Method: http.MethodPut, Path: "/widgets/{widget_id}", OperationID: "update_widget", Params: widgetParams{}, Body: widget{}, BodyEmbed: "widget", BodyRequired: true},
		{Method: http.MethodPost, Path: "/files/", OperationID: "upload", Params: uploadParams{}},
		{Method: http.MethodPost, Path: "/login/", OperationID: "login", Params: loginParams{}, Deprecated: true},
		{Method: http.MethodGet, Path: "/ping", OperationID: "ping"},
	}
}

func buildTestDoc(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := Build(Info{Title: "test", Version: "1.0.0"}, testRoutes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background(), openapi3.DisableExamplesValidation()))
	return doc
}

func paramByName(op *openapi3.Operation, name string) *openapi3.Parameter {
	for _, p := range op.Parameters {
		if p.Value.Name == name {
			return p.Value
		}
	}
	return nil
}

func TestBuild_Parameters(t *testing.T) {
	doc := buildTestDoc(t)
	op := doc.Paths.Find("/widgets/{widget_id}").Get
	require.NotNil(t, op)

	id := paramByName(op, "widget_id")
	require.NotNil(t, id)
	assert.Equal(t, openapi3.ParameterInPath, id.In)
	assert.True(t, id.Required)
	assert.Equal(t, "Widget", id.Schema.Value.Title)
	require.NotNil(t, id.Schema.Value.Min)
	assert.Equal(t, 1.0, *id.Schema.Value.Min)
	require.NotNil(t, id.Schema.Value.Max)
	assert.Equal(t, 999.0, *id.Schema.Value.Max)

	q := paramByName(op, "q")
	require.NotNil(t, q)
	assert.False(t, q.Required)
	assert.Equal(t, "Search text", q.Description)
	assert.Equal(t, uint64(3), q.Schema.Value.MinLength)
	require.NotNil(t, q.Schema.Value.MaxLength)
	assert.Equal(t, uint64(50), *q.Schema.Value.MaxLength)
	assert.Equal(t, "^fixed", q.Schema.Value.Pattern)

	ratio := paramByName(op, "ratio")
	require.NotNil(t, ratio)
	require.NotNil(t, ratio.Schema.Value.Min)
	require.NotNil(t, ratio.Schema.Value.Max)
	assert.Equal(t, 0.0, *ratio.Schema.Value.Min)
	assert.Equal(t, 1.0, *ratio.Schema.Value.Max)
	assert.True(t, ratio.Schema.Value.ExclusiveMin)
	assert.True(t, ratio.Schema.Value.ExclusiveMax)
	assert.False(t, id.Schema.Value.ExclusiveMin, "gte stays inclusive")

	limit := paramByName(op, "limit")
	require.NotNil(t, limit)
	assert.False(t, limit.Required)
	assert.Equal(t, int64(10), limit.Schema.Value.Default)

	tags := paramByName(op, "tag")
	require.NotNil(t, tags)
	assert.True(t, tags.Schema.Value.Type.Is(openapi3.TypeArray))
	assert.Equal(t, []any{"a", "b"}, tags.Schema.Value.Default)

	col := paramByName(op, "color")
	require.NotNil(t, col)
	assert.Equal(t, []any{"red", "green"}, col.Schema.Value.Enum)

	token := paramByName(op, "X-Token")
	require.NotNil(t, token)
	assert.Equal(t, openapi3.ParameterInHeader, token.In)
	assert.True(t, token.Deprecated)

	assert.Nil(t, paramByName(op, "secret"), "hidden parameters stay out of the document")

	session := paramByName(op, "session")
	require.NotNil(t, session)
	assert.Equal(t, openapi3.ParameterInCookie, session.In)
	assert.Equal(t, "abc", session.Example)

	ratio = paramByName(op, "ratio")
	require.NotNil(t, ratio)
	assert.True(t, ratio.Schema.Value.Type.Is(openapi3.TypeNumber))

	uid := paramByName(op, "id")
	require.NotNil(t, uid)
	assert.Equal(t, "uuid", uid.Schema.Value.Format)

	assert.NotNil(t, op.Responses.Value("422"), "operations with inputs document validation errors")
	assert.NotNil(t, op.Responses.Value("200"))
}

func TestBuild_JSONBody(t *testing.T) {
	doc := buildTestDoc(t)
	op := doc.Paths.Find("/widgets/").Post
	require.NotNil(t, op)
	require.NotNil(t, op.RequestBody)
	assert.True(t, op.RequestBody.Value.Required)

	mt := op.RequestBody.Value.Content.Get("application/json")
	require.NotNil(t, mt)
	s := mt.Schema.Value
	assert.ElementsMatch(t, []string{"name", "price"}, s.Required)

	price := s.Properties["price"].Value
	assert.True(t, price.Type.Is(openapi3.TypeInteger))
	assert.Equal(t, "Price", price.Title)
	require.NotNil(t, price.Min)
	assert.Equal(t, 100.0, *price.Min)
	assert.True(t, price.ExclusiveMin)

	assert.Equal(t, "email", s.Properties["email"].Value.Format)
	assert.Equal(t, "date-time", s.Properties["when"].Value.Format)
	assert.True(t, s.Properties["tags"].Value.UniqueItems)

	require.Contains(t, mt.Examples, "normal")
	assert.Equal(t, "A normal example", mt.Examples["normal"].Value.Summary)

	assert.NotNil(t, op.Responses.Value("201"))
	assert.Nil(t, op.Responses.Value("200"))
}

func TestBuild_EmbeddedBody(t *testing.T) {
	doc := buildTestDoc(t)
	op := doc.Paths.Find("/widgets/{widget_id}").Put
	require.NotNil(t, op)
	s := op.RequestBody.Value.Content.Get("application/json").Schema.Value
	assert.Equal(t, []string{"widget"}, s.Required)
	require.Contains(t, s.Properties, "widget")
	assert.Contains(t, s.Properties["widget"].Value.Properties, "price")
}

func TestBuild_FormBodies(t *testing.T) {
	doc := buildTestDoc(t)

	upload := doc.Paths.Find("/files/").Post
	require.NotNil(t, upload.RequestBody)
	mt := upload.RequestBody.Value.Content.Get("multipart/form-data")
	require.NotNil(t, mt, "file fields switch to multipart")
	files := mt.Schema.Value.Properties["files"].Value
	assert.True(t, files.Type.Is(openapi3.TypeArray))
	assert.Equal(t, "binary", files.Items.Value.Format)
	assert.Empty(t, upload.Parameters)

	login := doc.Paths.Find("/login/").Post
	assert.True(t, login.Deprecated)
	mt = login.RequestBody.Value.Content.Get("application/x-www-form-urlencoded")
	require.NotNil(t, mt)
	assert.ElementsMatch(t, []string{"username", "password"}, mt.Schema.Value.Required)
}

func TestBuild_NoInputs(t *testing.T) {
	doc := buildTestDoc(t)
	op := doc.Paths.Find("/ping").Get
	require.NotNil(t, op)
	assert.Nil(t, op.RequestBody)
	assert.Nil(t, op.Responses.Value("422"))
	assert.Len(t, doc.Tags, 1)
}

func TestBuild_RejectsBadParams(t *testing.T) {
	_, err := Build(Info{Title: "t", Version: "1"}, []Route{{Method: http.MethodGet, Path: "/x", Params: 5}})
	assert.ErrorIs(t, err, params.ErrInvalidTarget)
}

func TestRender(t *testing.T) {
	doc := buildTestDoc(t)
	r, err := Render(doc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(r.JSON, &decoded))
	assert.Equal(t, Version, decoded["openapi"])
	assert.Contains(t, string(r.YAML), "openapi:")

	loaded, err := openapi3.NewLoader().LoadFromData(r.YAML)
	require.NoError(t, err)
	assert.NotNil(t, loaded.Paths.Find("/widgets/{widget_id}"))
}
