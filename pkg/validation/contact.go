package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Contact is the contact form submitted with the final quote.
type Contact struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"required,ukphone"`
}

var (
	contactValidate *validator.Validate
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{10,14}$`)
)

func init() {
	contactValidate = validator.New()
	_ = contactValidate.RegisterValidation("ukphone", validatePhone)
}

// Spaces, dashes and brackets are allowed as separators.
func validatePhone(fl validator.FieldLevel) bool {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(fl.Field().String())
	return phonePattern.MatchString(p)
}

// Normalize trims surrounding whitespace from every field.
func (c Contact) Normalize() Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

// ValidateContact returns the first failing field as an InputError.
func ValidateContact(c Contact) error {
	err := contactValidate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate contact: %w", err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return Invalid(field, "this field is required")
	case "email":
		return Invalid(field, "please enter a valid email address")
	case "ukphone":
		return Invalid(field, "please enter a valid phone number")
	default:
		return Invalid(field, "failed %s check", fe.Tag())
	}
}
