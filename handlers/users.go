package handlers

import (
	"net/http"
	"strconv"

	"github.com/accounthub/account-service/internal/account"
	"github.com/accounthub/account-service/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// UserHandler serves profile reads, edits and the admin listing.
type UserHandler struct {
	svc AccountService
}

func NewUserHandler(svc AccountService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register mounts the routes behind auth; /users additionally requires admin.
func (h *UserHandler) Register(r gin.IRouter, auth gin.HandlerFunc) {
	r.GET("/me", auth, h.Me)
	r.PUT("/edit-account", auth, h.EditAccount)
	r.GET("/users", auth, middleware.RequireAdmin(), h.ListUsers)
}

func (h *UserHandler) Me(c *gin.Context) {
	profile, err := h.svc.GetMe(c.Request.Context(), middleware.ClaimsFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User information retrieved successfully", "user": profile})
}

func (h *UserHandler) EditAccount(c *gin.Context) {
	var req account.EditRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.svc.EditAccount(c.Request.Context(), req, middleware.ClaimsFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": u})
}

// ListUsers reads page and limit from the query string, falling back to
// request headers of the same name.
func (h *UserHandler) ListUsers(c *gin.Context) {
	page := intParam(c, "page")
	limit := intParam(c, "limit")
	res, err := h.svc.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Users retrieved successfully", "users": res})
}

// intParam returns 0 when the value is absent or not a number; the service
// substitutes defaults.
func intParam(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		raw = c.GetHeader(name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
