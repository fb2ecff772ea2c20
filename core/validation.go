package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// NewValidator instantiates a validator with english translations,
// JSON field names and app-wide custom validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate, translator
}

// RegisterCustomTranslation registers a static error message for a custom validation tag.
// A validator.RegisterTranslationsFunc is required for registering the Translator,
// but the default translation has already been registered; a noop func bypasses this.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	registerFn := func(ut.Translator) error { return nil }
	transFn := func(_ ut.Translator, _ validator.FieldError) string { return text }
	_ = validate.RegisterTranslation(tag, translator, registerFn, transFn)
}
