package account

import (
	"errors"
	"net/http"

	"github.com/accounthub/account-service/internal/identity"
	"github.com/accounthub/account-service/pkg/apperror"
)

type operation int

const (
	opSignIn operation = iota
	opSignUp
	opConfirm
	opSignOut
	opGroups
)

// providerError maps an identity provider failure onto the status and
// message returned to clients. fallback is used when the provider gave no message.
func providerError(err error, op operation, fallback string) error {
	if err == nil {
		return nil
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}

	msg := identity.MessageOf(err)
	switch identity.CodeOf(err) {
	case identity.CodeUserNotConfirmed:
		return apperror.New(http.StatusBadRequest, "User is not confirmed!", err)
	case identity.CodeNotAuthorized:
		switch op {
		case opConfirm:
			return apperror.New(http.StatusBadRequest, "User is already confirmed", err)
		case opSignOut:
			return apperror.New(http.StatusUnauthorized, "Invalid token", err)
		case opGroups:
			return apperror.Internal(orDefault(msg, fallback), err)
		}
		return apperror.New(http.StatusUnauthorized, "Incorrect username or password!", err)
	case identity.CodeUserNotFound:
		return apperror.New(http.StatusNotFound, "User does not exist!", err)
	case identity.CodeInvalidPassword:
		return apperror.New(http.StatusBadRequest, "Invalid password!", err)
	case identity.CodeUsernameExists:
		return apperror.New(http.StatusBadRequest, "User already exists!", err)
	case identity.CodeCodeMismatch:
		return apperror.New(http.StatusBadRequest, "Invalid confirmation code", err)
	case identity.CodeExpiredCode:
		return apperror.New(http.StatusBadRequest, "Confirmation code has expired", err)
	case identity.CodeInvalidParameter:
		return apperror.New(http.StatusBadRequest, orDefault(msg, fallback), err)
	case identity.CodeTooManyRequests, identity.CodeLimitExceeded:
		return apperror.New(http.StatusTooManyRequests, orDefault(msg, fallback), err)
	case identity.CodeChallengeRequired:
		return apperror.New(http.StatusUnauthorized, orDefault(msg, fallback), err)
	}
	return apperror.Internal(orDefault(msg, fallback), err)
}

// roleSyncError keeps the status of the translated provider error and
// prefixes the provider message.
func roleSyncError(err error) error {
	msg := identity.MessageOf(err)
	if msg == "" {
		msg = err.Error()
	}
	status := apperror.Status(providerError(err, opGroups, msg))
	return apperror.New(status, "Failed to update user role: "+msg, err)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
