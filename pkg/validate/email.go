// Package validate holds input checks shared by the HTTP layer and the
// account workflows.
package validate

import (
	"regexp"
	"strings"

	"github.com/accounthub/account-service/pkg/apperror"
	validation "github.com/go-ozzo/ozzo-validation"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email trims and lowercases raw, then checks it looks like an address.
// Failures are 400 errors carrying the client-facing message.
func Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	err := validation.Validate(email,
		validation.Required.Error("Email is required!"),
		validation.Match(emailPattern).Error("Invalid email!"),
	)
	if err != nil {
		return "", apperror.BadRequest(err.Error())
	}
	return email, nil
}
