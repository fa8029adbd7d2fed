// Package validation checks request payloads field by field.
//
// Each rule is a Check that yields zero or more field errors. Schemas are plain
// functions that compose checks and hand them to Validate, which returns nil or a
// *errors.ValidationError carrying every failed field path.
package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

var validate = validator.New()

type Check func() []pkgerrors.FieldError

func Validate(checks ...Check) error {
	var fields []pkgerrors.FieldError
	for _, check := range checks {
		fields = append(fields, check()...)
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.NewValidationError(fields...)
}

func fail(field, message string) []pkgerrors.FieldError {
	return []pkgerrors.FieldError{{Field: field, Message: message}}
}

func MinLen(field, value string, min int, message string) Check {
	return func() []pkgerrors.FieldError {
		if utf8.RuneCountInString(value) < min {
			return fail(field, message)
		}
		return nil
	}
}

func Email(field, value, message string) Check {
	return func() []pkgerrors.FieldError {
		if err := validate.Var(value, "required,email"); err != nil {
			return fail(field, message)
		}
		return nil
	}
}

func URL(field, value, message string) Check {
	return func() []pkgerrors.FieldError {
		if err := validate.Var(value, "required,url"); err != nil {
			return fail(field, message)
		}
		return nil
	}
}

func MinInt(field string, value, min int32, message string) Check {
	return func() []pkgerrors.FieldError {
		if value < min {
			return fail(field, message)
		}
		return nil
	}
}

func Equal(field, value, other, message string) Check {
	return func() []pkgerrors.FieldError {
		if value != other {
			return fail(field, message)
		}
		return nil
	}
}

func Required(field string, present bool, message string) Check {
	return func() []pkgerrors.FieldError {
		if !present {
			return fail(field, message)
		}
		return nil
	}
}

func OneOf[T ~string](field string, value T, allowed []T) Check {
	return func() []pkgerrors.FieldError {
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return fail(field, fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", quoteAll(allowed), value))
	}
}

func MinItems[T any](field string, values []T, min int, message string) Check {
	return func() []pkgerrors.FieldError {
		if len(values) < min {
			return fail(field, message)
		}
		return nil
	}
}

// Each applies rule to every element, addressing failures as field[i].
func Each(field string, values []string, rule func(field, value string) Check) Check {
	return func() []pkgerrors.FieldError {
		var out []pkgerrors.FieldError
		for i, v := range values {
			out = append(out, rule(fmt.Sprintf("%s[%d]", field, i), v)()...)
		}
		return out
	}
}

// When runs check only if cond holds; used for optional fields.
func When(cond bool, check Check) Check {
	return func() []pkgerrors.FieldError {
		if !cond {
			return nil
		}
		return check()
	}
}

func quoteAll[T ~string](values []T) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += " | "
		}
		out += "'" + string(v) + "'"
	}
	return out
}
