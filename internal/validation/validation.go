// Package validation contains the logic for validating request data and
// domain values.
//
// It owns a single configured go-playground validator (with the custom
// "notblank" and "uuidstr" tags) and turns its errors into field errors
// the client can understand.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator instance.
//
// Field names in errors come from the json tag so they match what the
// client sent.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("uuidstr", func(fl validator.FieldLevel) bool {
			return IsValidUUID(fl.Field().String())
		})

		validate = v
	})
	return validate
}
