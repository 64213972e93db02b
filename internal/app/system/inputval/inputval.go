// Package inputval validates request structs with go-playground/validator
// and turns failures into human-readable messages.
//
// Structs declare rules in a `validate` tag and the field's display name in
// a `label` tag:
//
//	type input struct {
//	    FullName string `validate:"required,max=100" label:"Full name"`
//	}
package inputval

import (
	"errors"
	"reflect"
	"strings"

	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

var (
	validate = validator.New()
	trans    ut.Translator
)

// messages overrides the stock English translations for the tags this app
// uses. {0} is the field label and {1} the tag parameter.
var messages = map[string]string{
	"required": "{0} is required.",
	"max":      "{0} must be at most {1} characters.",
	"min":      "{0} must be at least {1} characters.",
	"email":    "A valid email address is required.",
	"datetime": "{0} must be a date in YYYY-MM-DD format.",
	"uuid":     "{0} is not a valid identifier.",
	"nefold":   "{0} is reserved.",
}

func init() {
	uni := ut.New(en.New())
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	// nefold=X rejects values equal to X ignoring case and surrounding space.
	_ = validate.RegisterValidation("nefold", func(fl validator.FieldLevel) bool {
		return !strings.EqualFold(strings.TrimSpace(fl.Field().String()), fl.Param())
	})

	for tag, text := range messages {
		registerMessage(tag, text)
	}
}

func registerMessage(tag, text string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Field() + " is invalid."
			}
			return s
		},
	)
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures for one struct.
type Result struct {
	Errors []FieldError
}

// Validate checks v against its `validate` tags. It never returns nil.
func Validate(v any) *Result {
	res := &Result{}
	err := validate.Struct(v)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: "Invalid input."})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Message: fe.Translate(trans),
		})
	}
	return res
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Err converts the result into an *apperr.ValidationError, or nil when valid.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return apperr.Invalid(msgs...)
}

// IsValidID reports whether s looks like an entity ID.
func IsValidID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}
