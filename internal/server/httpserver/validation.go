package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/userkeeper/internal/timex"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

func newValidator() (*validator.Validate, error) {
	v := validator.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// a zero date counts as missing for "required"
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(timex.Date)
		if !ok || d.IsZero() {
			return nil
		}
		return d.String()
	}, timex.Date{})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return nil, fmt.Errorf("register notblank validation: %w", err)
	}

	return v, nil
}

// fieldErrors turns a validation failure into "{field} {message}" lines.
// ok is false when err is not a field validation failure.
func fieldErrors(err error) (msgs []string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	msgs = make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+" "+fieldMessage(fe))
	}
	return msgs, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return "can't be blank"
	case "required":
		return "must not be null"
	case "email":
		return "must be a well-formed email address"
	default:
		return "is invalid"
	}
}
