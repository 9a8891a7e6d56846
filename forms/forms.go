// Package forms validates incoming form payloads and turns rule violations
// into per-field messages that can be shown next to the offending input.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by the name the client sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// FieldErrors maps a field name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has a message.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Err returns nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Field wraps a single field failure.
func Field(field, msg string) FieldErrors {
	return FieldErrors{field: msg}
}

// Validate runs the `validate` struct tags of v and returns the failures.
// The result is empty, never nil.
func Validate(v any) FieldErrors {
	out := FieldErrors{}
	err := validate.Struct(v)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("_", err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath drops the top level struct name, "CreateRestaurantInput.tables[0].capacity" -> "tables[0].capacity"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	case "notblank":
		return "This field cannot be blank."
	default:
		return fmt.Sprintf("Failed the %q rule.", fe.Tag())
	}
}
