// Package validate wraps go-playground/validator with human readable,
// per-field messages.
package validate

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

var instance = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return v
}

// maxBytes bounds the encoded length of a string, which is what bcrypt and
// similar byte-oriented consumers limit.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Struct validates s and returns a *httpx.ValidationError keyed by JSON field
// name, or nil when s is valid.
func Struct(s any) error {
	err := instance.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	root := reflect.TypeOf(s)
	out := httpx.NewValidationError()
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(labelFor(root, fe), fe))
	}
	return out
}

// Var validates a single value against tag, reporting it under field.
func Var(field, label string, value any, tag string) error {
	err := instance.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	return httpx.Invalid(field, message(label, fieldErrs[0]))
}

func message(label string, fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required", "required_without", "required_with":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", label, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "iso4217":
		return label + " must be a valid currency code"
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", label, humanize(param))
	default:
		return label + " is invalid"
	}
}

func labelFor(root reflect.Type, fe validator.FieldError) string {
	cur := root
	var (
		field reflect.StructField
		found bool
	)
	parts := strings.Split(fe.StructNamespace(), ".")
	for _, name := range parts[1:] {
		cur = deref(cur)
		if cur == nil || cur.Kind() != reflect.Struct {
			found = false
			break
		}
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		f, ok := cur.FieldByName(name)
		if !ok {
			found = false
			break
		}
		field, found, cur = f, true, f.Type
	}
	if found {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
	}
	return humanize(fe.StructField())
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	return t
}

// humanize turns "CustomerID" into "Customer ID".
func humanize(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		return err
	}
	return Struct(dst)
}
