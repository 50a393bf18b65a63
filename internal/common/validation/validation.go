// Package validation checks form structs with go-playground/validator and
// turns the first failure into a field-level domain error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	commonerrors "github.com/AlibekovAA/toggle-task/internal/common/errors"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsValidPassword(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s and reports the first failing field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return commonerrors.ErrValidation.WithCause(err)
	}

	fe := fieldErrs[0]
	return commonerrors.NewValidationError(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "username":
		return "username may only contain latin letters, digits, '_' and '-', and must start and end with a letter or digit"
	case "password":
		return fmt.Sprintf("password must contain a letter and a digit and be at most %d bytes", constants.PasswordMaxLength)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func IsValidUsername(value string) bool {
	if !usernameRegex.MatchString(value) {
		return false
	}

	first, last := rune(value[0]), rune(value[len(value)-1])
	return isAlnum(first) && isAlnum(last)
}

// IsValidPassword also bounds the byte length, bcrypt ignores anything past 72.
func IsValidPassword(value string) bool {
	if len(value) > constants.PasswordMaxLength {
		return false
	}

	hasLetter, hasDigit := false, false
	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return true
		}
	}
	return false
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ParseCheckbox accepts the values an HTML checkbox or a plain boolean field
// can produce. An empty value means false.
func ParseCheckbox(field, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1":
		return true, nil
	case "", "off", "false", "0":
		return false, nil
	default:
		label := strings.ReplaceAll(field, "_", " ")
		return false, commonerrors.NewValidationError(field, label+" must be a yes/no value")
	}
}
