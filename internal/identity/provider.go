// Package identity talks to the hosted identity provider that owns
// credentials, confirmation codes and group membership.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// Provider is the set of identity provider operations the service consumes.
type Provider interface {
	SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*Tokens, error)
	ConfirmSignUp(ctx context.Context, email, code string) error
	AddUserToGroup(ctx context.Context, username, group string) error
	RemoveUserFromGroup(ctx context.Context, username, group string) error
	CreateGroup(ctx context.Context, group string) error
	GlobalSignOut(ctx context.Context, accessToken string) error
}

type SignUpInput struct {
	Email    string
	Password string
	Role     string
	Name     string
}

type SignUpResult struct {
	UserSub       string
	UserConfirmed bool
}

// Tokens is the session issued by a successful sign-in.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

// Error codes reported by the provider.
const (
	CodeUserNotConfirmed  = "UserNotConfirmedException"
	CodeNotAuthorized     = "NotAuthorizedException"
	CodeUserNotFound      = "UserNotFoundException"
	CodeInvalidPassword   = "InvalidPasswordException"
	CodeInvalidParameter  = "InvalidParameterException"
	CodeUsernameExists    = "UsernameExistsException"
	CodeCodeMismatch      = "CodeMismatchException"
	CodeExpiredCode       = "ExpiredCodeException"
	CodeResourceNotFound  = "ResourceNotFoundException"
	CodeGroupExists       = "GroupExistsException"
	CodeTooManyRequests   = "TooManyRequestsException"
	CodeLimitExceeded     = "LimitExceededException"
	CodeChallengeRequired = "ChallengeRequired"
)

// Error is a failed provider call. Code is the provider's error code when
// one was returned, empty for transport failures.
type Error struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity %s: %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("identity %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCode reports whether err is a provider error with the given code.
func IsCode(err error, code string) bool {
	var ie *Error
	return errors.As(err, &ie) && ie.Code == code
}

// CodeOf returns the provider error code of err, or "".
func CodeOf(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// MessageOf returns the provider message of err, or "".
func MessageOf(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Message
	}
	return ""
}
