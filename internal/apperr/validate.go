package apperr

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	// report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct runs the `validate` tags on v and converts the first failure into a
// *ValidationError keyed by the field's JSON-ish name.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return &ValidationError{Field: lowerFirst(fieldPath(fe)), Reason: reasonFor(fe)}
	}
	return err
}

func fieldPath(fe validator.FieldError) string {
	// "Input.alternatives[2].description" -> "alternatives[2].description"
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must not be empty"
		}
		return "too short"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "too many"
		}
		return "too long"
	case "gt":
		return "must be positive"
	default:
		return fe.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
