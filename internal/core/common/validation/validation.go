package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	errors "github.com/codeup/novabook/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

// ValidationBuilder collects field rules and checks them all in Validate.
type ValidationBuilder struct {
	fields []*FieldValidator
}

var tagValidator = validator.New()

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) add(rule ValidatorFunc) *FieldValidator {
	fv.Validators = append(fv.Validators, rule)
	return fv
}

// Required rejects blank strings, zero numbers and nil string pointers.
func (fv *FieldValidator) Required() *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		var missing bool
		switch v := value.(type) {
		case string:
			missing = strings.TrimSpace(v) == ""
		case int64:
			missing = v == 0
		case int:
			missing = v == 0
		case *string:
			missing = v == nil || strings.TrimSpace(*v) == ""
		}
		if missing {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
		}
		return nil
	})
}

// PositiveID rejects zero and negative identifiers.
func (fv *FieldValidator) PositiveID() *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok && v <= 0 {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be a positive identifier", fv.FieldName), errors.ErrCodeInvalidID)
		}
		return nil
	})
}

func (fv *FieldValidator) IntRange(min, max int, code errors.ErrorCode) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(int); ok {
			if v < min || v > max {
				message := fmt.Sprintf("%s must be between %d and %d", fv.FieldName, min, max)
				return errors.NewValidationFieldError(fv.FieldName, message, code)
			}
		}
		return nil
	})
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) < min {
				message := fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
}

// Email accepts an empty string; combine with Required when the address is mandatory.
func (fv *FieldValidator) Email() *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			if err := tagValidator.Var(v, "email"); err != nil {
				message := fmt.Sprintf("%s must be a valid email address", fv.FieldName)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeInvalidEmail)
			}
		}
		return nil
	})
}

func (fv *FieldValidator) ISBN() *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" && !IsISBN(v) {
			message := fmt.Sprintf("%s must be a 10 or 13 digit ISBN", fv.FieldName)
			return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeInvalidISBN)
		}
		return nil
	})
}

// NotAfter rejects dates later than limit's calendar day.
func (fv *FieldValidator) NotAfter(limit time.Time) *FieldValidator {
	return fv.add(func(value interface{}) *errors.AppError {
		if v, ok := value.(time.Time); ok {
			if v.Format(time.DateOnly) > limit.Format(time.DateOnly) {
				message := fmt.Sprintf("%s cannot be in the future", fv.FieldName)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeInvalidDate)
			}
		}
		return nil
	})
}

func (fv *FieldValidator) Custom(rule ValidatorFunc) *FieldValidator {
	return fv.add(rule)
}

// Validate runs every rule of every field and reports all failures together.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var failed []errors.ValidationError

	for _, field := range v.fields {
		for _, rule := range field.Validators {
			appErr := rule(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				failed = append(failed, details.Errors...)
				continue
			}
			failed = append(failed, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(failed) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: failed})
	}
	return nil
}

// NormalizeISBN strips hyphens and spaces.
func NormalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(isbn))
}

// IsISBN checks the shape of an ISBN-10 (last character may be X) or ISBN-13.
// Check digits are not verified.
func IsISBN(isbn string) bool {
	s := NormalizeISBN(isbn)
	switch len(s) {
	case 13:
		return allDigits(s)
	case 10:
		last := s[9]
		return allDigits(s[:9]) && (last == 'X' || last == 'x' || (last >= '0' && last <= '9'))
	default:
		return false
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
