package services

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	phoneTag  = "phone"
	phoneText = "{0} must be a valid mobile number"

	idNumberTag  = "idnumber"
	idNumberText = "{0} does not match the document type (784-YYYY-NNNNNNN-N or 6-9 letters/digits)"

	requiredText = "{0} is required"
)

// Validator checks input structs and turns failures into a ValidationError.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() *Validator {
	enLocale := en.New()
	trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")

	v := validator.New()
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	v.RegisterStructValidation(applicantIDNumber, ApplicantInput{})

	registerTranslation(v, trans, phoneTag, phoneText)
	registerTranslation(v, trans, idNumberTag, idNumberText)
	registerTranslation(v, trans, "required", requiredText, true)
	registerTranslation(v, trans, "required_if", requiredText, true)

	return &Validator{validate: v, translator: trans}
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func applicantIDNumber(sl validator.StructLevel) {
	a := sl.Current().Interface().(ApplicantInput)
	if a.IDNumber != "" && !ValidIDNumber(a.IDType, a.IDNumber) {
		sl.ReportError(a.IDNumber, "id_number", "IDNumber", idNumberTag, "")
	}
}

// Struct validates s and returns a *ValidationError on failure.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Translate(v.translator)})
	}
	return NewValidationError(errors.New("invalid input"), fields...)
}
