package binder

import (
	"fmt"
	"net/http"
)

// Path binds path parameters through extractor, using `path:"name"` tags.
// Missing parameters leave the field untouched.
//
//	var req struct {
//		ID string `path:"id"`
//	}
//	err := binder.Path(func(_ *http.Request, name string) string {
//		return ctx.Param(name)
//	})(ctx.Request(), &req)
func Path(extractor func(r *http.Request, name string) string) Binder {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}

		rv, err := structValue(v, ErrFailedToParsePath)
		if err != nil {
			return err
		}
		rt := rv.Type()

		for i := range rv.NumField() {
			field := rv.Field(i)
			fieldType := rt.Field(i)
			if !field.CanSet() {
				continue
			}

			name, skip := parseFieldTag(fieldType, "path")
			if skip {
				continue
			}
			value := extractor(r, name)
			if value == "" {
				continue
			}
			if err := setFieldValue(field, fieldType.Type, []string{value}); err != nil {
				return fmt.Errorf("%w: field %s: %w", ErrFailedToParsePath, fieldType.Name, err)
			}
		}
		return nil
	}
}
