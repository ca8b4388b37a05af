// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testModel string

func (testModel) EnumValues() []string { return []string{"alexnet", "resnet", "lenet"} }

func withPathParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func validationErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Errors
}

func TestBind_PathAndQuery(t *testing.T) {
	type keyboardParams struct {
		KeyboardID int     `path:"keyboard_id" validate:"gte=1,lte=999"`
		Q          *string `query:"keyboard-query"`
	}

	b := NewBinder(Options{})

	r := withPathParams(httptest.NewRequest(http.MethodGet, "/keyboards/7/?keyboard-query=hey", nil), "keyboard_id", "7")
	var p keyboardParams
	require.NoError(t, b.Bind(r, &p))
	assert.Equal(t, 7, p.KeyboardID)
	require.NotNil(t, p.Q)
	assert.Equal(t, "hey", *p.Q)

	r = withPathParams(httptest.NewRequest(http.MethodGet, "/keyboards/1000/", nil), "keyboard_id", "1000")
	p = keyboardParams{}
	errs := validationErrors(t, b.Bind(r, &p))
	require.Len(t, errs, 1)
	assert.Equal(t, FieldError{
		Loc:  []any{"path", "keyboard_id"},
		Msg:  "ensure this value is less than or equal to 999",
		Type: TypeNotLE,
		Ctx:  map[string]any{"limit_value": int64(999)},
	}, errs[0])
	assert.Nil(t, p.Q)
}

func TestBind_CollectsAllErrorsInDeclarationOrder(t *testing.T) {
	type userItemParams struct {
		UserID int    `path:"user_id"`
		ItemID string `path:"item_id"`
		Needy  string `query:"needy"`
	}

	r := withPathParams(httptest.NewRequest(http.MethodGet, "/users/abc/items/foo", nil), "user_id", "abc", "item_id", "foo")
	var p userItemParams
	errs := validationErrors(t, NewBinder(Options{}).Bind(r, &p))

	require.Len(t, errs, 2)
	assert.Equal(t, FieldError{Loc: []any{"path", "user_id"}, Msg: "value is not a valid integer", Type: TypeInteger}, errs[0])
	assert.Equal(t, FieldError{Loc: []any{"query", "needy"}, Msg: "field required", Type: TypeMissing}, errs[1])
}

func TestBind_Defaults(t *testing.T) {
	type windowParams struct {
		Skip  int  `query:"skip" default:"0"`
		Limit int  `query:"limit" default:"10"`
		Short bool `query:"short" default:"false"`
	}

	var p windowParams
	require.NoError(t, NewBinder(Options{}).Bind(httptest.NewRequest(http.MethodGet, "/items/?skip=1", nil), &p))
	assert.Equal(t, windowParams{Skip: 1, Limit: 10, Short: false}, p)
}

func TestBind_Booleans(t *testing.T) {
	type cardParams struct {
		Short bool `query:"short" default:"false"`
	}
	b := NewBinder(Options{})

	for raw, want := range map[string]bool{
		"1": true, "True": true, "yes": true, "on": true,
		"0": false, "false": false, "NO": false, "off": false,
	} {
		var p cardParams
		r := httptest.NewRequest(http.MethodGet, "/cards/1?short="+raw, nil)
		require.NoError(t, b.Bind(r, &p), raw)
		assert.Equal(t, want, p.Short, raw)
	}

	var p cardParams
	errs := validationErrors(t, b.Bind(httptest.NewRequest(http.MethodGet, "/cards/1?short=maybe", nil), &p))
	require.Len(t, errs, 1)
	assert.Equal(t, TypeBool, errs[0].Type)
	assert.Equal(t, "value could not be parsed to a boolean", errs[0].Msg)
}

func TestBind_Enum(t *testing.T) {
	type modelParams struct {
		Model testModel `path:"model_name"`
	}
	b := NewBinder(Options{})

	var p modelParams
	require.NoError(t, b.Bind(withPathParams(httptest.NewRequest(http.MethodGet, "/models/lenet", nil), "model_name", "lenet"), &p))
	assert.Equal(t, testModel("lenet"), p.Model)

	errs := validationErrors(t, b.Bind(withPathParams(httptest.NewRequest(http.MethodGet, "/models/vgg", nil), "model_name", "vgg"), &p))
	require.Len(t, errs, 1)
	assert.Equal(t, TypeEnum, errs[0].Type)
	assert.Equal(t, "value is not a valid enumeration member; permitted: 'alexnet', 'resnet', 'lenet'", errs[0].Msg)
	assert.Equal(t, []any{"alexnet", "resnet", "lenet"}, errs[0].Ctx["enum_values"])
}

func TestBind_StringConstraints(t *testing.T) {
	type updateParams struct {
		Q             string  `query:"q" validate:"min=3,max=50,regex=^[a-zA-Z0-9 ]+"`
		OptionalQuery *string `query:"optional_query" validate:"omitempty,max=3"`
	}
	b := NewBinder(Options{})

	tests := []struct {
		name     string
		query    string
		wantType string
		wantLoc  []any
	}{
		{name: "missing", query: "", wantType: TypeMissing, wantLoc: []any{"query", "q"}},
		{name: "too short", query: "q=ab", wantType: TypeMinLength, wantLoc: []any{"query", "q"}},
		{name: "bad prefix", query: "q=" + url.QueryEscape("!abc"), wantType: TypeRegex, wantLoc: []any{"query", "q"}},
		{name: "optional too long", query: "q=abc&optional_query=abcd", wantType: TypeMaxLength, wantLoc: []any{"query", "optional_query"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p updateParams
			errs := validationErrors(t, b.Bind(httptest.NewRequest(http.MethodPut, "/items/1?"+tt.query, nil), &p))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantType, errs[0].Type)
			assert.Equal(t, tt.wantLoc, errs[0].Loc)
		})
	}

	// The pattern only anchors at the start.
	var p updateParams
	require.NoError(t, b.Bind(httptest.NewRequest(http.MethodPut, "/items/1?q="+url.QueryEscape("abc!"), nil), &p))
	assert.Equal(t, "abc!", p.Q)
}

func TestBind_RepeatedQuery(t *testing.T) {
	type echoParams struct {
		Q      []string `query:"list-query"`
		Hidden *string  `query:"hidden_query" hidden:"true"`
		IDs    []int    `query:"id"`
	}
	b := NewBinder(Options{})

	var p echoParams
	require.NoError(t, b.Bind(httptest.NewRequest(http.MethodGet, "/echo/items/?list-query=a&list-query=b", nil), &p))
	assert.Equal(t, []string{"a", "b"}, p.Q)
	assert.NotNil(t, p.IDs)
	assert.Empty(t, p.IDs)
	assert.Nil(t, p.Hidden)

	p = echoParams{}
	errs := validationErrors(t, b.Bind(httptest.NewRequest(http.MethodGet, "/echo/items/?id=1&id=x", nil), &p))
	require.Len(t, errs, 1)
	assert.Equal(t, []any{"query", "id", 1}, errs[0].Loc)
}

func TestBind_Headers(t *testing.T) {
	type headerParams struct {
		UserAgent     *string  `header:"user_agent"`
		StrangeHeader *string  `header:"strange_header,raw"`
		XToken        []string `header:"x_token"`
	}

	fields, err := Describe(reflect.TypeOf(headerParams{}))
	require.NoError(t, err)
	assert.Equal(t, "User-Agent", fields[0].Name)
	assert.Equal(t, "strange_header", fields[1].Name)
	assert.Equal(t, "X-Token", fields[2].Name)

	r := httptest.NewRequest(http.MethodGet, "/headers/echo/", nil)
	r.Header.Set("User-Agent", "curl/8")
	r.Header.Set("strange_header", "odd")
	r.Header.Add("X-Token", "foo")
	r.Header.Add("X-Token", "bar")

	var p headerParams
	require.NoError(t, NewBinder(Options{}).Bind(r, &p))
	require.NotNil(t, p.UserAgent)
	assert.Equal(t, "curl/8", *p.UserAgent)
	require.NotNil(t, p.StrangeHeader)
	assert.Equal(t, "odd", *p.StrangeHeader)
	assert.Equal(t, []string{"foo", "bar"}, p.XToken)
}

func TestBind_Cookie(t *testing.T) {
	type meParams struct {
		Token string `cookie:"jwt_token"`
	}
	b := NewBinder(Options{})

	r := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	r.AddCookie(&http.Cookie{Name: "jwt_token", Value: "abc"})
	var p meParams
	require.NoError(t, b.Bind(r, &p))
	assert.Equal(t, "abc", p.Token)

	errs := validationErrors(t, b.Bind(httptest.NewRequest(http.MethodGet, "/users/me", nil), &meParams{}))
	assert.Equal(t, []any{"cookie", "jwt_token"}, errs[0].Loc)
}

func TestBind_URLEncodedForm(t *testing.T) {
	type loginParams struct {
		Username string `form:"username"`
		Password string `form:"password"`
	}
	b := NewBinder(Options{})

	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=ana&password="))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var p loginParams
	errs := validationErrors(t, b.Bind(r, &p))
	require.Len(t, errs, 1)
	assert.Equal(t, []any{"body", "password"}, errs[0].Loc)
	assert.Equal(t, TypeMissing, errs[0].Type)
	assert.Equal(t, "ana", p.Username)
}

func TestBind_MultipartFiles(t *testing.T) {
	type filesParams struct {
		Token string       `form:"token"`
		Files []UploadFile `file:"files"`
		One   *UploadFile  `file:"file"`
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("token", "t1"))
	for _, content := range []string{"hello", "hi"} {
		fw, err := mw.CreateFormFile("files", content+".txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/files/", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	var p filesParams
	require.NoError(t, NewBinder(Options{}).Bind(r, &p))
	assert.Equal(t, "t1", p.Token)
	require.Len(t, p.Files, 2)
	assert.Equal(t, "hello.txt", p.Files[0].Filename)
	assert.Equal(t, int64(2), p.Files[1].Size)
	data, err := p.Files[0].Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Nil(t, p.One)
}

func TestBind_BodyTooLarge(t *testing.T) {
	type loginParams struct {
		Username string `form:"username"`
	}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username="+strings.Repeat("a", 64)))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	err := NewBinder(Options{MaxBodyBytes: 16}).Bind(r, &loginParams{})
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestBind_InvalidTarget(t *testing.T) {
	b := NewBinder(Options{})
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.ErrorIs(t, b.Bind(r, struct{}{}), ErrInvalidTarget)
	var nilTarget *struct{}
	assert.ErrorIs(t, b.Bind(r, nilTarget), ErrInvalidTarget)
}

func TestDescribe_RejectsBadDeclarations(t *testing.T) {
	type twoLocations struct {
		X string `query:"x" header:"x"`
	}
	type mapParam struct {
		M map[string]string `query:"m"`
	}
	type badFile struct {
		F []byte `file:"f"`
	}

	for name, typ := range map[string]any{"two": twoLocations{}, "map": mapParam{}, "file": badFile{}} {
		_, err := Describe(reflect.TypeOf(typ))
		assert.Error(t, err, name)
	}
}
