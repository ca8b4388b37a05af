// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	defaultMaxMemory    = 8 << 20
	defaultMaxBodyBytes = 32 << 20
)

// Options tunes a Binder.
type Options struct {
	// MaxMemory is the part of a multipart body kept in memory; the rest
	// spills to temporary files.
	MaxMemory int64
	// MaxBodyBytes caps the size of any request body read by the binder.
	MaxBodyBytes int64
}

// Binder reads declared parameters from requests.
type Binder struct {
	maxMemory    int64
	maxBodyBytes int64
}

// NewBinder returns a Binder; zero options fall back to defaults.
func NewBinder(opts Options) *Binder {
	b := &Binder{maxMemory: opts.MaxMemory, maxBodyBytes: opts.MaxBodyBytes}
	if b.maxMemory <= 0 {
		b.maxMemory = defaultMaxMemory
	}
	if b.maxBodyBytes <= 0 {
		b.maxBodyBytes = defaultMaxBodyBytes
	}
	return b
}

// MaxBodyBytes reports the body limit applied by the binder.
func (b *Binder) MaxBodyBytes() int64 {
	return b.maxBodyBytes
}

// request caches the parsed sources of one request.
type request struct {
	r     *http.Request
	query url.Values
}

// Bind fills the tagged fields of the struct dst points to. Every problem is
// collected; the returned error is a *ValidationError unless the request
// itself could not be read.
func (b *Binder) Bind(r *http.Request, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, dst)
	}
	fields, err := Describe(rv.Type())
	if err != nil {
		return err
	}

	if needsForm(fields) {
		if err := b.parseForm(r); err != nil {
			return err
		}
	}

	req := &request{r: r, query: r.URL.Query()}
	verr := &ValidationError{}
	target := rv.Elem()
	for _, f := range fields {
		fv := target.FieldByIndex(f.Index)
		if f.In == InFile {
			verr.Errors = append(verr.Errors, bindFiles(fv, f, req.files(f.Name))...)
			continue
		}
		verr.Errors = append(verr.Errors, bindValues(fv, f, req.values(f))...)
	}
	return verr.OrNil()
}

func needsForm(fields []Field) bool {
	for _, f := range fields {
		if f.In == InForm || f.In == InFile {
			return true
		}
	}
	return false
}

func (b *Binder) parseForm(r *http.Request) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, b.maxBodyBytes)

	switch mediaType {
	case "multipart/form-data":
		err = r.ParseMultipartForm(b.maxMemory)
	case "application/x-www-form-urlencoded":
		err = r.ParseForm()
	default:
		return nil
	}
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", ErrMalformedForm, err)
}

// values returns the raw values of f; empty values count as absent.
func (req *request) values(f Field) []string {
	var raw []string
	switch f.In {
	case InPath:
		if v := chi.URLParam(req.r, f.Name); v != "" {
			if unescaped, err := url.PathUnescape(v); err == nil {
				v = unescaped
			}
			raw = []string{v}
		}
	case InQuery:
		raw = req.query[f.Name]
	case InHeader:
		raw = req.r.Header.Values(f.Name)
	case InCookie:
		if c, err := req.r.Cookie(f.Name); err == nil {
			raw = []string{c.Value}
		}
	case InForm:
		raw = req.r.PostForm[f.Name]
	}

	out := raw[:0:0]
	for _, v := range raw {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (req *request) files(name string) []*multipart.FileHeader {
	if req.r.MultipartForm == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, fh := range req.r.MultipartForm.File[name] {
		// Browsers send an empty part when no file was chosen.
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		out = append(out, fh)
	}
	return out
}

func bindValues(fv reflect.Value, f Field, raw []string) []FieldError {
	loc := f.In.ErrorLoc()
	if len(raw) == 0 {
		switch {
		case f.Default != nil:
			raw = []string{*f.Default}
			if f.Multi() {
				raw = strings.Split(*f.Default, ",")
			}
		case f.Required:
			return []FieldError{problemMissing.at(loc, f.Name)}
		default:
			if f.Multi() && fv.Kind() == reflect.Slice {
				fv.Set(reflect.MakeSlice(fv.Type(), 0, 0))
			}
			return nil
		}
	}

	var errs []FieldError
	var bound reflect.Value
	if f.Multi() {
		sliceType := f.Type
		if sliceType.Kind() == reflect.Ptr {
			sliceType = sliceType.Elem()
		}
		elemType := sliceType.Elem()
		list := reflect.MakeSlice(sliceType, 0, len(raw))
		for i, s := range raw {
			v, p := convertElem(s, elemType)
			if p != nil {
				errs = append(errs, p.at(loc, f.Name, i))
				continue
			}
			list = reflect.Append(list, v)
		}
		bound = list
	} else {
		v, p := convertScalar(raw[0], f.Elem())
		if p != nil {
			return []FieldError{p.at(loc, f.Name)}
		}
		bound = v
	}
	if len(errs) > 0 {
		return errs
	}

	for _, p := range checkVar(bound, f.Validate) {
		errs = append(errs, p.at(loc, f.Name))
	}
	if len(errs) > 0 {
		return errs
	}
	assign(fv, bound)
	return nil
}

func convertElem(raw string, t reflect.Type) (reflect.Value, *problem) {
	if t.Kind() != reflect.Ptr {
		return convertScalar(raw, t)
	}
	v, p := convertScalar(raw, t.Elem())
	if p != nil {
		return v, p
	}
	ptr := reflect.New(t.Elem())
	ptr.Elem().Set(v)
	return ptr, nil
}

// assign stores v into fv, allocating a pointer when the field is one.
func assign(fv reflect.Value, v reflect.Value) {
	if fv.Kind() == reflect.Ptr && v.Kind() != reflect.Ptr {
		ptr := reflect.New(fv.Type().Elem())
		ptr.Elem().Set(v)
		fv.Set(ptr)
		return
	}
	fv.Set(v)
}

func bindFiles(fv reflect.Value, f Field, headers []*multipart.FileHeader) []FieldError {
	if len(headers) == 0 {
		if f.Required {
			return []FieldError{problemMissing.at(f.In.ErrorLoc(), f.Name)}
		}
		return nil
	}
	if f.Multi() {
		list := make([]UploadFile, 0, len(headers))
		for _, fh := range headers {
			list = append(list, newUploadFile(fh))
		}
		assign(fv, reflect.ValueOf(list))
		return nil
	}
	assign(fv, reflect.ValueOf(newUploadFile(headers[0])))
	return nil
}
