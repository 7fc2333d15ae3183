package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// Query binds query parameters.
//
// Struct targets use `query:"name"` tags, falling back to the lower-cased
// field name; `query:"-"` skips a field. Supported field types are strings,
// integers, floats, bools, their pointers and slices.
//
// Map targets with string keys and interface values receive every
// parameter. A parameter given once becomes a string; a repeated parameter,
// or one whose name ends in [], becomes a []string under the bare name:
//
//	?city=Pune&bhk[]=2&bhk[]=3  =>  {"city": "Pune", "bhk": []string{"2", "3"}}
func Query() Binder {
	return func(r *http.Request, v any) error {
		values := r.URL.Query()

		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Map {
			return bindToMap(rv.Elem(), values)
		}
		return bindToStruct(v, "query", values, ErrFailedToParseQuery)
	}
}

func bindToMap(m reflect.Value, values map[string][]string) error {
	t := m.Type()
	if t.Key().Kind() != reflect.String || t.Elem().Kind() != reflect.Interface {
		return fmt.Errorf("%w: map target must have string keys and interface values", ErrFailedToParseQuery)
	}
	if m.IsNil() {
		m.Set(reflect.MakeMap(t))
	}

	for key, vals := range values {
		name, isList := strings.CutSuffix(key, "[]")
		if name == "" || len(vals) == 0 {
			continue
		}
		clean := make([]string, len(vals))
		for i, val := range vals {
			clean[i] = sanitizeStringValue(val)
		}

		var value any = clean[0]
		if isList || len(clean) > 1 {
			value = clean
		}
		m.SetMapIndex(reflect.ValueOf(name).Convert(t.Key()), reflect.ValueOf(value))
	}
	return nil
}
