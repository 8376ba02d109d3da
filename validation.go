package authkit

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// LoginPayload is the structured input for Auther.Login.
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate runs validation rules. Login only insists on a non-blank email
// and password; format checks belong to registration.
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

// RegisterPayload is the structured input for Auther.Register.
type RegisterPayload struct {
	FirstName  string `form:"first_name" json:"first_name"`
	LastName   string `form:"last_name" json:"last_name"`
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	Phone      string `form:"phone_number" json:"phone_number"`
	Department string `form:"department" json:"department"`
}

// Validate runs validation rules.
func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validation.Length(1, 200)),
		validation.Field(&p.LastName, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.Phone, validation.By(ValidatePhoneNumber)),
		validation.Field(&p.Department, validation.Length(0, 200)),
	)
}

// ValidatePhoneNumber accepts empty values or E.164 formatted numbers.
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return goerrors.New("must be an E.164 phone number", goerrors.CategoryValidation)
	}

	if !phonenumbers.IsValidNumber(num) {
		return goerrors.New("must be a valid phone number", goerrors.CategoryValidation)
	}

	return nil
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map for rendering.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}
