// Package validation runs the local checks made before any backend call,
// using go-playground/validator struct tags, and turns failures into the
// user-facing messages of the calling action.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
	"github.com/dmitrijs2005/ghosiportal/internal/common"
)

var (
	mobileRe = regexp.MustCompile(`^\d{10}$`)
	otpRe    = regexp.MustCompile(`^\d{6}$`)
)

// Rule maps a failed (field, tag) pair to a message. An empty Field or Tag
// matches any field or tag.
type Rule struct {
	Field   string
	Tag     string
	Message string
}

// Rules are checked in order; the first rule matching any failure provides
// the primary message.
type Rules []Rule

func (rs Rules) message(fe validator.FieldError) (string, int) {
	for i, r := range rs {
		if (r.Field == "" || r.Field == fe.Field()) && (r.Tag == "" || r.Tag == fe.Tag()) {
			return r.Message, i
		}
	}
	return fmt.Sprintf("%s is invalid", fe.Field()), len(rs)
}

// FieldError is one failed check, addressed by the field's JSON name.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Errors is a failed validation. Error returns the highest-priority
// message; it matches common.ErrValidation with errors.Is.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	if len(e.Fields) == 0 {
		return common.ErrValidation.Error()
	}
	return e.Fields[0].Message
}

func (e *Errors) Unwrap() error { return common.ErrValidation }

// Messages lists the distinct messages in priority order.
func (e *Errors) Messages() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range e.Fields {
		if !seen[f.Message] {
			seen[f.Message] = true
			out = append(out, f.Message)
		}
	}
	return out
}

// Validator wraps a configured *validator.Validate. It is safe for
// concurrent use.
type Validator struct {
	validator *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	for tag, fn := range map[string]validator.Func{
		"mobile": validateMobile,
		"otp":    validateOTP,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	v.RegisterStructValidation(validateHelpForm, models.HelpForm{})

	return &Validator{validator: v}
}

// Struct validates s and maps failures through rules.
func (v *Validator) Struct(s any, rules Rules) error {
	return v.convert(v.validator.Struct(s), "", rules)
}

// Var validates a single value against tag, reporting it as field.
func (v *Validator) Var(field string, value any, tag string, rules Rules) error {
	return v.convert(v.validator.Var(value, tag), field, rules)
}

func (v *Validator) convert(err error, field string, rules Rules) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	type ranked struct {
		FieldError
		rank int
	}
	items := make([]ranked, 0, len(ves))
	for _, fe := range ves {
		msg, rank := rules.message(namedError{FieldError: fe, field: field})
		name := fe.Field()
		if field != "" {
			name = field
		}
		items = append(items, ranked{FieldError: FieldError{Field: name, Tag: fe.Tag(), Message: msg}, rank: rank})
	}

	slices.SortStableFunc(items, func(a, b ranked) int { return a.rank - b.rank })

	out := &Errors{Fields: make([]FieldError, len(items))}
	for i, it := range items {
		out.Fields[i] = it.FieldError
	}
	return out
}

// namedError overrides the field name of errors from Var, which have none.
type namedError struct {
	validator.FieldError
	field string
}

func (n namedError) Field() string {
	if n.field != "" {
		return n.field
	}
	return n.FieldError.Field()
}

func validateMobile(fl validator.FieldLevel) bool {
	return mobileRe.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
}

func validateOTP(fl validator.FieldLevel) bool {
	return otpRe.MatchString(strings.TrimSpace(fl.Field().String()))
}

// validateHelpForm requires a valid phone number when the user asked to be
// called back.
func validateHelpForm(sl validator.StructLevel) {
	f := sl.Current().Interface().(models.HelpForm)
	if f.ContactMethod != models.ContactPhone {
		return
	}
	phone := strings.ReplaceAll(f.Phone, " ", "")
	switch {
	case strings.TrimSpace(phone) == "":
		sl.ReportError(f.Phone, "phone", "Phone", "required", "")
	case !mobileRe.MatchString(phone):
		sl.ReportError(f.Phone, "phone", "Phone", "mobile", "")
	}
}
