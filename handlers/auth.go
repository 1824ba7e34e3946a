package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/accounthub/account-service/internal/account"
	"github.com/accounthub/account-service/internal/models"
	"github.com/accounthub/account-service/pkg/apperror"
	"github.com/accounthub/account-service/pkg/middleware"
	"github.com/accounthub/account-service/pkg/principal"
	"github.com/gin-gonic/gin"
)

// AccountService is the part of *account.Service the HTTP layer depends on.
type AccountService interface {
	SignInOrRegister(ctx context.Context, req account.SignInRequest) (*account.SignInResult, error)
	Confirm(ctx context.Context, req account.ConfirmRequest) error
	GetMe(ctx context.Context, claims *principal.Claims) (*account.Profile, error)
	EditAccount(ctx context.Context, req account.EditRequest, claims *principal.Claims) (*models.User, error)
	ListUsers(ctx context.Context, page, limit int) (*account.UserPage, error)
	Logout(ctx context.Context, accessToken string, claims *principal.Claims) error
}

// AuthHandler serves sign-in/registration, confirmation and sign-out.
type AuthHandler struct {
	svc AccountService
}

func NewAuthHandler(svc AccountService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register mounts the routes. auth guards /logout.
func (h *AuthHandler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	r.POST("/auth", middleware.ValidateEmail(), h.SignInOrRegister)
	r.POST("/confirm", middleware.ValidateEmail(), h.Confirm)
	r.POST("/logout", auth, h.Logout)
}

// bindJSON decodes the body into v; an empty body leaves v zero-valued.
func bindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return apperror.New(http.StatusBadRequest, "Invalid request body", err)
	}
	return nil
}

// SignInOrRegister returns tokens for an existing user or registers a new one.
func (h *AuthHandler) SignInOrRegister(c *gin.Context) {
	var req account.SignInRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.svc.SignInOrRegister(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if res.Created {
		c.JSON(http.StatusCreated, gin.H{
			"message":       "User registered successfully!",
			"userSub":       res.SignUp.UserSub,
			"userConfirmed": res.SignUp.UserConfirmed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  res.Tokens.AccessToken,
		"idToken":      res.Tokens.IDToken,
		"refreshToken": res.Tokens.RefreshToken,
		"expiresIn":    res.Tokens.ExpiresIn,
		"tokenType":    res.Tokens.TokenType,
	})
}

func (h *AuthHandler) Confirm(c *gin.Context) {
	var req account.ConfirmRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.svc.Confirm(c.Request.Context(), req); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User confirmed successfully!", "success": true})
}

// Logout signs the caller out on the provider and revokes the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.svc.Logout(c.Request.Context(), middleware.AccessTokenFrom(c), middleware.ClaimsFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
