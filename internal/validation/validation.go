// Package validation holds the error types shared by the quote packages and
// the struct validator configured to report JSON paths.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var validate = newValidator()

// Issue is a single violation located by its JSON path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is returned when a value does not conform to its schema.
type Error struct {
	Issues []Issue `json:"issues"`
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a violation at path.
func (e *Error) Add(path, format string, args ...any) {
	e.Issues = append(e.Issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Merge appends the issues of err when it is an *Error. Any other non-nil
// error is returned unchanged so the caller can abort.
func (e *Error) Merge(err error) error {
	if err == nil {
		return nil
	}
	var other *Error
	if errors.As(err, &other) {
		e.Issues = append(e.Issues, other.Issues...)
		return nil
	}
	return err
}

// OrNil returns e when it holds at least one issue.
func (e *Error) OrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// ParseError reports input that could not be read at all, as opposed to
// input that was read but does not conform.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsSlug reports whether s is a valid identifier for config entities.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Struct validates v against its `validate` tags. Violations come back as an
// *Error whose paths use JSON field names, e.g. packages[0].lineItems[1].priceNet.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate struct: %w", err)
	}

	out := &Error{}
	for _, fe := range fieldErrs {
		out.Issues = append(out.Issues, Issue{Path: jsonPath(fe.Namespace()), Message: message(fe)})
	}
	return out
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register slug validation: %v", err))
	}
	return v
}

// jsonPath drops the root type name from a validator namespace.
func jsonPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "slug":
		return "must be 1-64 letters, digits, '-' or '_'"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
