package form

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const maxMemory = 32 << 20

// Form is a typed submission. Normalize runs after decoding and before the
// validation rules, so trimmed values are what get checked and stored.
type Form interface {
	Normalize()
}

type FieldError struct {
	Field   string
	Message string
}

// Errors lists field failures in the order the fields are declared.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// For returns the first message recorded for field, or "".
func (e Errors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

var setupOnce sync.Once

func setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

// Bind decodes the request body (urlencoded or multipart) into dst and
// validates it.
func Bind(r *http.Request, dst Form) error {
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return fmt.Errorf("parse form: %w", err)
	}
	return Validate(r.PostForm, dst)
}

// Validate decodes values into dst, normalizes it and applies its rules.
// Rule failures come back as Errors; anything else is a decoding problem.
func Validate(values url.Values, dst Form) error {
	setup()

	if err := binding.MapFormWithTag(dst, values, "form"); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	dst.Normalize()

	err := binding.Validator.ValidateStruct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe.Tag())})
	}
	return out
}

func message(tag string) string {
	switch tag {
	case "required", "notblank":
		return "This field is required."
	case "url", "http_url":
		return "Invalid URL."
	case "email":
		return "Invalid email address."
	}
	return "Invalid value."
}
