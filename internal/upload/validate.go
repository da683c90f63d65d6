package upload

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return slices.Contains(Languages, fl.Field().String())
	})
	return v
}

// describe turns validator errors into a single readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "language":
			msgs = append(msgs, fmt.Sprintf("unsupported language %q (supported: %s)", fe.Value(), strings.Join(Languages, ", ")))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("extract duration must be between %d and %d seconds", MinExtractDuration, MaxExtractDuration))
		case "http_url":
			msgs = append(msgs, fmt.Sprintf("invalid URL %q", fe.Value()))
		case "required_with":
			msgs = append(msgs, "file name is required when uploading from a stream")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid upload: %s", strings.Join(msgs, "; "))
}
