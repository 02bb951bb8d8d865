// Package schema defines the request bodies accepted by the HTTP API and
// validates them before anything reaches the store.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxScriptLength bounds a project script, counted in characters.
const MaxScriptLength = 1000

// ErrMalformedBody reports a request body that is not a JSON object.
var ErrMalformedBody = errors.New("malformed request body")

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads a single JSON object from r into dst and validates it. An
// empty body decodes as an empty object. Type mismatches and rule violations
// are reported together as *ValidationError; anything else unparseable,
// including trailing data after the object, wraps ErrMalformedBody.
func Decode(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)

	var typeErr *json.UnmarshalTypeError
	err := dec.Decode(dst)
	switch {
	case err == nil, errors.As(err, &typeErr) && typeErr.Field != "":
		if _, next := dec.Token(); !errors.Is(next, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrMalformedBody)
		}
	case errors.Is(err, io.EOF):
	default:
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	if typeErr == nil || typeErr.Field == "" {
		return Validate(dst)
	}

	// The decoder skips a mistyped field and keeps going, so the remaining
	// fields can still be validated.
	out := &ValidationError{Fields: []FieldError{{
		Field:   typeErr.Field,
		Message: "must be " + jsonTypeName(typeErr.Type),
	}}}

	var invalid *ValidationError
	if verr := Validate(dst); errors.As(verr, &invalid) {
		for _, f := range invalid.Fields {
			if f.Field != typeErr.Field {
				out.Fields = append(out.Fields, f)
			}
		}
	} else if verr != nil {
		return verr
	}
	return out
}

// Validate applies the struct's validation rules.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isText {
			return "must not be empty"
		}
		return "must be at least " + fe.Param()
	case "max":
		if isText {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid " + t.String()
	}
}
