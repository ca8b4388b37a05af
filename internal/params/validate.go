// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/go-playground/validator.v9"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	regexCache sync.Map // pattern -> *regexp.Regexp
)

// Validator returns the shared validator with the custom rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(jsonName)
		if err := v.RegisterValidation("regex", validateRegex); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("httpurl", validateHTTPURL); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	expr := pattern
	if !strings.HasPrefix(expr, "^") {
		expr = "^(?:" + expr + ")"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// validateRegex matches at the start of the value, like re.match.
func validateRegex(fl validator.FieldLevel) bool {
	re, err := compileAnchored(fl.Param())
	if err != nil {
		return false
	}
	return re.MatchString(fl.Field().String())
}

func validateHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// checkVar validates a single bound value against a validate tag.
func checkVar(v reflect.Value, tag string) []problem {
	if tag == "" {
		return nil
	}
	err := Validator().Var(v.Interface(), tag)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]problem, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, describeViolation(fe))
	}
	return out
}

// checkStruct validates v and returns errors located below prefix.
func checkStruct(v any, prefix ...any) []FieldError {
	err := Validator().Struct(v)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		loc := append(append([]any{}, prefix...), namespaceLoc(fe.Namespace())...)
		out = append(out, describeViolation(fe).at(loc...))
	}
	return out
}

// namespaceLoc turns "Item.images[0].url" into ["images", 0, "url"].
func namespaceLoc(ns string) []any {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	} else {
		return nil
	}
	var loc []any
	for _, part := range strings.Split(ns, ".") {
		name := part
		var indexes []any
		if i := strings.IndexByte(part, '['); i >= 0 {
			name = part[:i]
			for _, idx := range strings.Split(strings.TrimSuffix(part[i+1:], "]"), "][") {
				if n, err := strconv.Atoi(idx); err == nil {
					indexes = append(indexes, n)
				} else {
					indexes = append(indexes, idx)
				}
			}
		}
		if name != "" {
			loc = append(loc, name)
		}
		loc = append(loc, indexes...)
	}
	return loc
}

func limitValue(param string) any {
	if n, err := strconv.ParseInt(param, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(param, 64); err == nil {
		return f
	}
	return param
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func describeViolation(fe validator.FieldError) problem {
	param := fe.Param()
	limit := map[string]any{"limit_value": limitValue(param)}
	kind := fe.Kind()

	switch fe.Tag() {
	case "required":
		return problemMissing
	case "email":
		return problem{msg: "value is not a valid email address", typ: TypeEmail}
	case "httpurl", "url":
		return problem{msg: "invalid or missing URL scheme", typ: TypeURLScheme}
	case "regex":
		return problem{
			msg: fmt.Sprintf("string does not match regex %q", param),
			typ: TypeRegex,
			ctx: map[string]any{"pattern": param},
		}
	case "oneof":
		permitted := strings.Fields(param)
		quoted := make([]string, 0, len(permitted))
		for _, p := range permitted {
			quoted = append(quoted, "'"+p+"'")
		}
		return problem{
			msg: "unexpected value; permitted: " + strings.Join(quoted, ", "),
			typ: TypeConst,
			ctx: map[string]any{"given": fmt.Sprint(fe.Value()), "permitted": permitted},
		}
	}

	switch {
	case kind == reflect.String:
		switch fe.Tag() {
		case "min", "gte":
			return problem{msg: "ensure this value has at least " + param + " characters", typ: TypeMinLength, ctx: limit}
		case "max", "lte":
			return problem{msg: "ensure this value has at most " + param + " characters", typ: TypeMaxLength, ctx: limit}
		}
	case kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map:
		switch fe.Tag() {
		case "min", "gte":
			return problem{msg: "ensure this value has at least " + param + " items", typ: TypeMinItems, ctx: limit}
		case "max", "lte":
			return problem{msg: "ensure this value has at most " + param + " items", typ: TypeMaxItems, ctx: limit}
		}
	case isNumberKind(kind):
		switch fe.Tag() {
		case "gte", "min":
			return problem{msg: "ensure this value is greater than or equal to " + param, typ: TypeNotGE, ctx: limit}
		case "gt":
			return problem{msg: "ensure this value is greater than " + param, typ: TypeNotGT, ctx: limit}
		case "lte", "max":
			return problem{msg: "ensure this value is less than or equal to " + param, typ: TypeNotLE, ctx: limit}
		case "lt":
			return problem{msg: "ensure this value is less than " + param, typ: TypeNotLT, ctx: limit}
		}
	}

	return problem{
		msg: fmt.Sprintf("failed on the %q rule", fe.Tag()),
		typ: "value_error." + fe.Tag(),
	}
}
