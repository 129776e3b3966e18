// Package validation wraps go-playground/validator with the wallet's
// custom tags and turns failures into domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "identrust/pkg/domain-errors"
)

const (
	// MaxBodySize bounds JSON request bodies (64 KB).
	MaxBodySize = 64 * 1024

	MaxNameLength    = 200
	MaxDetailsLength = 4096
	MaxSearchLength  = 100
	MaxHashLength    = 512
	MaxListLimit     = 100
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// messages maps a failing tag to its message. %[1]s is the JSON field
// name and %[2]s the tag parameter.
var messages = map[string]string{
	"required": "%[1]s is required",
	"email":    "%[1]s must be a valid email",
	"min":      "%[1]s must be at least %[2]s",
	"max":      "%[1]s must be at most %[2]s",
	"oneof":    "%[1]s must be one of [%[2]s]",
	"notblank": "%[1]s must not be blank",
	"isodate":  "%[1]s must be a date in YYYY-MM-DD form",
}

var validate = build()

func build() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	tags := map[string]validator.Func{
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		"isodate": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || isoDate.MatchString(s)
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return v
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate checks struct tags on req.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage describes the first failing field of a validator error.
func ErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	fe := fieldErrs[0]
	field := fe.Field()
	if field == "" {
		field = strings.ToLower(fe.StructField())
	}
	if format, ok := messages[fe.ActualTag()]; ok {
		return fmt.Sprintf(format, field, fe.Param())
	}
	if field == "" {
		return "invalid request body"
	}
	return field + " is invalid"
}

// CheckStringLength rejects values longer than max bytes.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) <= max {
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
}
