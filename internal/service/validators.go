package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	priceTag   = "price"
	priceText  = "{0} must be a non-negative amount below 100000000 with at most two decimals"
	priceRegex = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

	requiredTag  = "required"
	requiredText = "this field is required"

	eqFieldTag  = "eqfield"
	eqFieldText = "passwords do not match"
)

// ValidationErrors maps a form field name to its message. It is returned
// when user input is rejected before anything is written.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// AsValidationErrors extracts field messages from err, if it carries any.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

// Validator checks form structs and renders English messages.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator instantiates the validator with the application's rules.
func NewValidator() *Validator {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use form field names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(priceTag, priceValidation)
	registerCustomTranslation(validate, translator, priceTag, priceText)
	registerCustomTranslation(validate, translator, requiredTag, requiredText, true)
	registerCustomTranslation(validate, translator, eqFieldTag, eqFieldText, true)

	return &Validator{validate: validate, translator: translator}
}

// registerCustomTranslation registers a custom translation for the specified validation tag.
func registerCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// priceValidation accepts decimal strings such as "0", "12" or "12.5",
// with at most eight whole digits.
func priceValidation(fl validator.FieldLevel) bool {
	return priceRegex.MatchString(fl.Field().String())
}

// Struct validates s and returns ValidationErrors, or nil when s is valid.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verrs := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := verrs[fe.Field()]; !seen {
			verrs[fe.Field()] = fe.Translate(v.translator)
		}
	}
	return verrs
}

// Var checks a single value against validation tags such as "email".
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// ParsePrice converts a validated decimal price into cents.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !priceRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	whole, frac, _ := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	return units*100 + cents, nil
}
