package account

import (
	"errors"
	"regexp"

	"github.com/accounthub/account-service/pkg/apperror"
	validation "github.com/go-ozzo/ozzo-validation"
)

// SignInRequest is the body of POST /auth.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Name, validation.Length(0, 200)),
	)
}

// signInValidationError picks the client message for a failed
// SignInRequest.Validate. Missing credentials win over a long name.
func signInValidationError(err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		_, email := fields["email"]
		_, password := fields["password"]
		if _, name := fields["name"]; name && !email && !password {
			return apperror.BadRequest("Name is too long")
		}
	}
	return apperror.BadRequest("Email and password are required")
}

// ConfirmRequest is the body of POST /confirm.
type ConfirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r ConfirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Code, validation.Required),
	)
}

// EditRequest is the body of PUT /edit-account. Nil fields are left unchanged.
type EditRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  *string `json:"role"`
}

// group names accepted by the provider: no whitespace, at most 128 chars
var rolePattern = regexp.MustCompile(`^\S+$`)

func validateRole(role string) error {
	return validation.Validate(role,
		validation.Length(1, 128),
		validation.Match(rolePattern),
	)
}
