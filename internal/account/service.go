// Package account implements the account workflows: sign-in-or-register,
// email confirmation, profile reads, account edits with role
// synchronization, user listing and sign-out.
package account

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/accounthub/account-service/internal/identity"
	"github.com/accounthub/account-service/internal/models"
	"github.com/accounthub/account-service/internal/users"
	"github.com/accounthub/account-service/pkg/apperror"
	"github.com/accounthub/account-service/pkg/logger"
	"github.com/accounthub/account-service/pkg/principal"
	"github.com/accounthub/account-service/pkg/validate"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Revoker records signed-out access tokens until they expire.
type Revoker interface {
	RevokeUntil(ctx context.Context, token string, expiresAt time.Time) error
}

// Service orchestrates the identity provider and the profile store.
type Service struct {
	repo    users.Repository
	idp     identity.Provider
	revoker Revoker
}

// NewService wires the service. revoker may be nil.
func NewService(repo users.Repository, idp identity.Provider, revoker Revoker) *Service {
	return &Service{repo: repo, idp: idp, revoker: revoker}
}

// SignInResult is either a session (existing profile) or a fresh registration.
type SignInResult struct {
	Created bool
	Tokens  *identity.Tokens
	SignUp  *identity.SignUpResult
}

// SignInOrRegister signs in when a profile exists for the email, otherwise
// registers with the provider and creates the profile.
func (s *Service) SignInOrRegister(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	if err := req.Validate(); err != nil {
		return nil, signInValidationError(err)
	}
	email, err := validate.Email(req.Email)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Errorf("find user %s: %v", email, err)
		return nil, apperror.Wrap(err, "Error finding user!")
	}

	if existing != nil {
		tokens, err := s.idp.SignIn(ctx, email, req.Password)
		if err != nil {
			return nil, providerError(err, opSignIn, "Error signing in or registering user")
		}
		return &SignInResult{Tokens: tokens}, nil
	}

	name := strings.TrimSpace(req.Name)
	res, err := s.idp.SignUp(ctx, identity.SignUpInput{
		Email:    email,
		Password: req.Password,
		Role:     models.RoleUser,
		Name:     name,
	})
	if err != nil {
		return nil, providerError(err, opSignUp, "Error signing in or registering user")
	}

	profile := &models.User{
		ID:    res.UserSub,
		Email: email,
		Name:  name,
		Role:  models.RoleUser,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, apperror.BadRequest("User already exists!")
		}
		logger.Errorf("create user %s: %v", email, err)
		return nil, apperror.Wrap(err, "Error creating user or logging in!")
	}
	logger.Infof("registered user %s (confirmed=%v)", res.UserSub, res.UserConfirmed)
	return &SignInResult{Created: true, SignUp: res}, nil
}

// Confirm submits the sign-up confirmation code.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) error {
	if err := req.Validate(); err != nil {
		return apperror.BadRequest("Email and confirmation code are required")
	}
	email, err := validate.Email(req.Email)
	if err != nil {
		return err
	}
	if err := s.idp.ConfirmSignUp(ctx, email, strings.TrimSpace(req.Code)); err != nil {
		return providerError(err, opConfirm, "Error confirming user email")
	}
	return nil
}

// Profile is the caller's view of their own account.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsOnboarded bool      `json:"isOnboarded"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetMe loads the profile of the authenticated caller.
func (s *Service) GetMe(ctx context.Context, claims *principal.Claims) (*Profile, error) {
	if claims == nil || claims.Subject == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	u, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(err, "Error finding user!")
	}
	if u == nil {
		return nil, apperror.NotFound("User not found")
	}
	return &Profile{
		ID:          u.ID,
		Username:    claims.Username,
		Email:       u.Email,
		Name:        u.Name,
		IsOnboarded: u.IsOnboarded,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}, nil
}

// UserPage is one page of the user listing.
type UserPage struct {
	Users      []models.User `json:"users"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// ListUsers returns a page of profiles. page and limit are clamped to sane values.
func (s *Service) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// keep (page-1)*limit within int
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	list, total, err := s.repo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		logger.Errorf("list users: %v", err)
		return nil, apperror.Wrap(err, "Error listing users!")
	}
	if list == nil {
		list = []models.User{}
	}
	return &UserPage{
		Users:      list,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Logout signs the caller out everywhere and refuses the current token until it expires.
func (s *Service) Logout(ctx context.Context, accessToken string, claims *principal.Claims) error {
	if accessToken == "" || claims == nil {
		return apperror.Unauthorized("User not authenticated")
	}
	if err := s.idp.GlobalSignOut(ctx, accessToken); err != nil {
		return providerError(err, opSignOut, "Error signing out")
	}
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.RevokeUntil(ctx, accessToken, claims.Expiry()); err != nil {
		logger.Errorf("revoke token for %s: %v", claims.Subject, err)
		return apperror.Wrap(err, "Error signing out")
	}
	return nil
}
