// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package params

import (
	"bytes"
	"cmp"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

var (
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// keyLoc is the location segment of an unparsable map key.
const keyLoc = "__key__"

// bodyDecoder fills a value from syntactically valid JSON and keeps going
// after type errors, so one pass reports every mismatched field.
type bodyDecoder struct {
	errs []FieldError
	// order records the visiting sequence of each location. Struct fields
	// are visited in declaration order whether or not the client sent them.
	order map[string]int
}

func newBodyDecoder() *bodyDecoder {
	return &bodyDecoder{order: make(map[string]int)}
}

func (d *bodyDecoder) visit(loc []any) {
	key := locKey(loc)
	if _, ok := d.order[key]; !ok {
		d.order[key] = len(d.order)
	}
}

func (d *bodyDecoder) fail(p problem, loc []any) {
	d.errs = append(d.errs, p.at(append([]any(nil), loc...)...))
}

func (d *bodyDecoder) decode(raw json.RawMessage, v reflect.Value, loc []any) {
	d.visit(loc)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	isNull := bytes.Equal(raw, []byte("null"))

	if v.Kind() == reflect.Ptr {
		if isNull {
			v.Set(reflect.Zero(v.Type()))
			return
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		d.decode(raw, v.Elem(), loc)
		return
	}

	if v.CanAddr() {
		if reflect.PointerTo(v.Type()).Implements(jsonUnmarshalerType) {
			d.unmarshaler(raw, v, loc)
			return
		}
		if reflect.PointerTo(v.Type()).Implements(textUnmarshalerType) && !isNull {
			d.text(raw, v, loc)
			return
		}
	}

	if isNull {
		switch v.Kind() {
		case reflect.Map, reflect.Slice, reflect.Interface:
			v.Set(reflect.Zero(v.Type()))
		}
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		d.object(raw, v, loc)
	case reflect.Map:
		d.mapping(raw, v, loc)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 && raw[0] == '"' {
			d.plain(raw, v, loc)
			return
		}
		d.list(raw, v, loc)
	case reflect.Array:
		d.list(raw, v, loc)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n FlexInt
		if err := n.UnmarshalJSON(raw); err != nil || v.OverflowInt(int64(n)) {
			d.fail(problemInteger, loc)
			return
		}
		v.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n FlexInt
		if err := n.UnmarshalJSON(raw); err != nil || n < 0 || v.OverflowUint(uint64(n)) {
			d.fail(problemInteger, loc)
			return
		}
		v.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		var f FlexFloat
		if err := f.UnmarshalJSON(raw); err != nil || v.OverflowFloat(float64(f)) {
			d.fail(problemFloat, loc)
			return
		}
		v.SetFloat(float64(f))
	default:
		d.plain(raw, v, loc)
	}
}

// plain defers to encoding/json for strings, bools, byte slices and
// interface values.
func (d *bodyDecoder) plain(raw json.RawMessage, v reflect.Value, loc []any) {
	target := reflect.New(v.Type())
	if err := json.Unmarshal(raw, target.Interface()); err != nil {
		d.fail(typeProblem(v.Type()), loc)
		return
	}
	v.Set(target.Elem())
}

func (d *bodyDecoder) unmarshaler(raw json.RawMessage, v reflect.Value, loc []any) {
	err := v.Addr().Interface().(json.Unmarshaler).UnmarshalJSON(raw)
	if err == nil {
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		at := append([]any(nil), loc...)
		if typeErr.Field != "" {
			for _, part := range strings.Split(typeErr.Field, ".") {
				at = append(at, part)
			}
		}
		t := typeErr.Type
		if t == nil {
			t = v.Type()
		}
		d.fail(typeProblem(t), at)
		return
	}
	d.errs = append(d.errs, FieldError{Loc: append([]any(nil), loc...), Msg: err.Error(), Type: "value_error"})
}

func (d *bodyDecoder) text(raw json.RawMessage, v reflect.Value, loc []any) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.fail(typeProblem(v.Type()), loc)
		return
	}
	if err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		d.fail(typeProblem(v.Type()), loc)
	}
}

func (d *bodyDecoder) object(raw json.RawMessage, v reflect.Value, loc []any) {
	members, ok := objectMembers(raw)
	if !ok {
		d.fail(problemDict, loc)
		return
	}
	byName := make(map[string]json.RawMessage, len(members))
	for _, m := range members {
		byName[m.key] = m.value
	}
	d.fields(byName, v, loc)
}

func (d *bodyDecoder) fields(byName map[string]json.RawMessage, v reflect.Value, loc []any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			d.fields(byName, v.Field(i), loc)
			continue
		}
		if !sf.IsExported() || name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fieldLoc := append(append([]any(nil), loc...), name)
		raw, ok := lookupMember(byName, name)
		if !ok {
			d.visit(fieldLoc)
			continue
		}
		d.decode(raw, v.Field(i), fieldLoc)
	}
}

// lookupMember prefers an exact key and falls back to a case-insensitive
// match, as encoding/json does.
func lookupMember(byName map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := byName[name]; ok {
		return raw, true
	}
	for k, raw := range byName {
		if strings.EqualFold(k, name) {
			return raw, true
		}
	}
	return nil, false
}

func (d *bodyDecoder) mapping(raw json.RawMessage, v reflect.Value, loc []any) {
	members, ok := objectMembers(raw)
	if !ok {
		d.fail(problemDict, loc)
		return
	}
	t := v.Type()
	if v.IsNil() {
		v.Set(reflect.MakeMapWithSize(t, len(members)))
	}
	for _, m := range members {
		key, ok := mapKey(t.Key(), m.key)
		if !ok {
			keyAt := append(append([]any(nil), loc...), keyLoc)
			d.visit(keyAt)
			d.fail(typeProblem(t.Key()), keyAt)
			continue
		}
		elem := reflect.New(t.Elem()).Elem()
		before := len(d.errs)
		d.decode(m.value, elem, append(append([]any(nil), loc...), m.key))
		if len(d.errs) == before {
			v.SetMapIndex(key, elem)
		}
	}
}

func mapKey(t reflect.Type, s string) (reflect.Value, bool) {
	key := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		key.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || key.OverflowInt(n) {
			return key, false
		}
		key.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil || key.OverflowUint(n) {
			return key, false
		}
		key.SetUint(n)
	default:
		return key, false
	}
	return key, true
}

func (d *bodyDecoder) list(raw json.RawMessage, v reflect.Value, loc []any) {
	var elems []json.RawMessage
	if raw[0] != '[' || json.Unmarshal(raw, &elems) != nil {
		d.fail(problemList, loc)
		return
	}
	if v.Kind() == reflect.Slice {
		v.Set(reflect.MakeSlice(v.Type(), len(elems), len(elems)))
	}
	for i, elem := range elems {
		if i >= v.Len() {
			break
		}
		d.decode(elem, v.Index(i), append(append([]any(nil), loc...), i))
	}
}

type member struct {
	key   string
	value json.RawMessage
}

// objectMembers splits a JSON object into its members in input order.
func objectMembers(raw json.RawMessage) ([]member, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		out = append(out, member{key: key, value: value})
	}
	return out, true
}

// merge combines decode errors with validation errors. Validation errors at
// or below a location that already failed to decode are dropped, and the
// result follows the order fields were visited in.
func (d *bodyDecoder) merge(validation []FieldError) []FieldError {
	failed := make(map[string]bool, len(d.errs))
	for _, fe := range d.errs {
		failed[locKey(fe.Loc)] = true
	}
	type ranked struct {
		fe   FieldError
		rank int
	}
	all := make([]ranked, 0, len(d.errs)+len(validation))
	for _, fe := range d.errs {
		all = append(all, ranked{fe: fe, rank: d.rank(fe.Loc)})
	}
	for _, fe := range validation {
		if !d.coveredBy(failed, fe.Loc) {
			all = append(all, ranked{fe: fe, rank: d.rank(fe.Loc)})
		}
	}
	slices.SortStableFunc(all, func(a, b ranked) int { return cmp.Compare(a.rank, b.rank) })

	out := make([]FieldError, 0, len(all))
	for _, r := range all {
		out = append(out, r.fe)
	}
	return out
}

func (d *bodyDecoder) coveredBy(failed map[string]bool, loc []any) bool {
	for i := len(loc); i > 0; i-- {
		if failed[locKey(loc[:i])] {
			return true
		}
	}
	return false
}

// rank finds the visit order of the deepest known location enclosing loc.
func (d *bodyDecoder) rank(loc []any) int {
	for i := len(loc); i > 0; i-- {
		if n, ok := d.order[locKey(loc[:i])]; ok {
			return n
		}
	}
	return len(d.order)
}

func locKey(loc []any) string {
	var b strings.Builder
	for _, part := range loc {
		switch p := part.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", p)
		default:
			fmt.Fprintf(&b, ".%v", p)
		}
	}
	return b.String()
}
