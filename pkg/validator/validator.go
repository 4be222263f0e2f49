// Package validator checks request structs against `validate` tags and turns
// failures into per-field messages clients can show next to their inputs.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps the request bodies DecodeAndValidate reads.
const MaxBodyBytes = 1 << 20

var (
	validate = newValidate()

	customMu       sync.RWMutex
	customMessages = map[string]string{}
)

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
}

// fieldName reports a field by its json or query tag, falling back to the Go
// name, so error keys match what the client sent.
func fieldName(f reflect.StructField) string {
	for _, key := range [...]string{"json", "query"} {
		if name, _, _ := strings.Cut(f.Tag.Get(key), ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// Register adds a validation tag. message is what clients see when a field
// fails it.
func Register(tag string, fn validator.Func, message string) error {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("register validation %q: %w", tag, err)
	}
	customMu.Lock()
	defer customMu.Unlock()
	customMessages[tag] = message
	return nil
}

// Validate checks s against its tags. Tag failures come back as a
// *ValidationError.
func Validate(s any) error {
	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

// DecodeAndValidate decodes a JSON request body of at most MaxBodyBytes into
// dst and validates it.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return Validate(dst)
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("field '%s' %s", fe.Field(), message(fe)))
	}
	return strings.Join(parts, "; ")
}

// Fields maps each failing field to its message.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

var builtinMessages = map[string]func(validator.FieldError) string{
	"required": func(validator.FieldError) string { return "is required" },
	"min":      func(fe validator.FieldError) string { return "must be at least " + bound(fe) },
	"max":      func(fe validator.FieldError) string { return "must be at most " + bound(fe) },
	"gte":      func(fe validator.FieldError) string { return "must be greater than or equal to " + fe.Param() },
	"lte":      func(fe validator.FieldError) string { return "must be less than or equal to " + fe.Param() },
	"oneof":    func(fe validator.FieldError) string { return "must be one of: " + fe.Param() },
}

func message(fe validator.FieldError) string {
	if fn, ok := builtinMessages[fe.Tag()]; ok {
		return fn(fe)
	}
	customMu.RLock()
	msg, ok := customMessages[fe.Tag()]
	customMu.RUnlock()
	if ok {
		return msg
	}
	return fmt.Sprintf("failed on '%s' validation", fe.Tag())
}

// bound renders a min/max parameter with the unit that applies to the
// field's kind: a plain number, characters or items.
func bound(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fe.Param()
	case reflect.Slice, reflect.Array, reflect.Map:
		return fe.Param() + " items"
	default:
		return fe.Param() + " characters"
	}
}
