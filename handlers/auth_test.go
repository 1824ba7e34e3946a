package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/accounthub/account-service/internal/account"
	"github.com/accounthub/account-service/internal/identity"
	"github.com/accounthub/account-service/internal/models"
	"github.com/accounthub/account-service/pkg/apperror"
	"github.com/accounthub/account-service/pkg/middleware"
	"github.com/accounthub/account-service/pkg/principal"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeService records inputs and returns canned results.
type fakeService struct {
	signIn    account.SignInRequest
	confirm   account.ConfirmRequest
	edit      account.EditRequest
	claims    *principal.Claims
	token     string
	page      int
	limit     int
	signInRes *account.SignInResult
	profile   *account.Profile
	edited    *models.User
	userPage  *account.UserPage
	err       error
}

func (f *fakeService) SignInOrRegister(_ context.Context, req account.SignInRequest) (*account.SignInResult, error) {
	f.signIn = req
	return f.signInRes, f.err
}

func (f *fakeService) Confirm(_ context.Context, req account.ConfirmRequest) error {
	f.confirm = req
	return f.err
}

func (f *fakeService) GetMe(_ context.Context, claims *principal.Claims) (*account.Profile, error) {
	f.claims = claims
	return f.profile, f.err
}

func (f *fakeService) EditAccount(_ context.Context, req account.EditRequest, claims *principal.Claims) (*models.User, error) {
	f.edit, f.claims = req, claims
	return f.edited, f.err
}

func (f *fakeService) ListUsers(_ context.Context, page, limit int) (*account.UserPage, error) {
	f.page, f.limit = page, limit
	return f.userPage, f.err
}

func (f *fakeService) Logout(_ context.Context, token string, claims *principal.Claims) error {
	f.token, f.claims = token, claims
	return f.err
}

// stubAuth stands in for AuthMiddleware with fixed claims.
func stubAuth(claims *principal.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, claims)
		c.Set(middleware.AccessTokenKey, "raw-token")
		c.Next()
	}
}

func newRouter(svc AccountService, claims *principal.Claims) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	NewAuthHandler(svc).Register(r, stubAuth(claims))
	NewUserHandler(svc).Register(r, stubAuth(claims))
	return r
}

func do(r *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var userClaims = &principal.Claims{Subject: "sub-1", Username: "ann@example.com"}

func TestAuth_SignIn(t *testing.T) {
	svc := &fakeService{signInRes: &account.SignInResult{Tokens: &identity.Tokens{
		AccessToken: "at", IDToken: "it", RefreshToken: "rt", ExpiresIn: 3600, TokenType: "Bearer",
	}}}
	r := newRouter(svc, nil)

	w := do(r, http.MethodPost, "/auth", `{"email":" Ann@Example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "at", body["accessToken"])
	assert.Equal(t, "it", body["idToken"])
	assert.Equal(t, "rt", body["refreshToken"])
	assert.Equal(t, float64(3600), body["expiresIn"])
	assert.Equal(t, "Bearer", body["tokenType"])
	// email normalized before reaching the service
	assert.Equal(t, "ann@example.com", svc.signIn.Email)
	assert.Equal(t, "pw", svc.signIn.Password)
}

func TestAuth_Register(t *testing.T) {
	svc := &fakeService{signInRes: &account.SignInResult{Created: true, SignUp: &identity.SignUpResult{UserSub: "sub-9"}}}
	r := newRouter(svc, nil)

	w := do(r, http.MethodPost, "/auth", `{"email":"new@example.com","password":"pw","name":"Neo"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "User registered successfully!", body["message"])
	assert.Equal(t, "sub-9", body["userSub"])
	assert.Equal(t, false, body["userConfirmed"])
	assert.Equal(t, "Neo", svc.signIn.Name)
}

func TestAuth_Errors(t *testing.T) {
	svc := &fakeService{err: apperror.Unauthorized("Incorrect username or password!")}
	r := newRouter(svc, nil)

	w := do(r, http.MethodPost, "/auth", `{"email":"ann@example.com","password":"bad"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect username or password!", decode(t, w)["error"])

	// email middleware rejects before the service runs
	svc.signIn = account.SignInRequest{}
	w = do(r, http.MethodPost, "/auth", `{"password":"pw"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required!", decode(t, w)["error"])
	assert.Empty(t, svc.signIn.Password)

	svc.err = errors.New("unexpected")
	w = do(r, http.MethodPost, "/auth", `{"email":"ann@example.com","password":"pw"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decode(t, w)["error"])
}

func TestConfirm(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, nil)

	w := do(r, http.MethodPost, "/confirm", `{"email":"ANN@example.com","code":"123456"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "User confirmed successfully!", body["message"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, account.ConfirmRequest{Email: "ann@example.com", Code: "123456"}, svc.confirm)

	svc.err = apperror.BadRequest("Invalid confirmation code")
	w = do(r, http.MethodPost, "/confirm", `{"email":"ann@example.com","code":"000000"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid confirmation code", decode(t, w)["error"])
}

func TestLogout(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, userClaims)

	w := do(r, http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "raw-token", svc.token)
	assert.Equal(t, userClaims, svc.claims)
}

func TestMe(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{profile: &account.Profile{
		ID: "sub-1", Username: "ann@example.com", Email: "ann@example.com", Role: "user", CreatedAt: now, UpdatedAt: now,
	}}
	r := newRouter(svc, userClaims)

	w := do(r, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "User information retrieved successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "sub-1", user["id"])
	assert.Equal(t, "ann@example.com", user["username"])
	assert.Equal(t, false, user["isOnboarded"])
	assert.Equal(t, "2024-05-01T12:00:00Z", user["createdAt"])
	assert.Same(t, userClaims, svc.claims)

	svc.err = apperror.NotFound("User not found")
	w = do(r, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditAccount(t *testing.T) {
	svc := &fakeService{edited: &models.User{ID: "sub-1", Email: "ann@example.com", Name: "Annie", Role: "user", IsOnboarded: true}}
	r := newRouter(svc, userClaims)

	w := do(r, http.MethodPut, "/edit-account", `{"email":"ann@example.com","name":"Annie"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "User updated successfully", body["message"])
	assert.Equal(t, "Annie", body["user"].(map[string]interface{})["name"])
	require.NotNil(t, svc.edit.Name)
	assert.Equal(t, "Annie", *svc.edit.Name)
	assert.Nil(t, svc.edit.Role)

	// an empty body still reaches the service, which owns the missing-email rule
	svc.err = apperror.BadRequest("Email is required to identify the user to update")
	w = do(r, http.MethodPut, "/edit-account", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email is required to identify the user to update", decode(t, w)["error"])
	assert.Equal(t, "", svc.edit.Email)

	w = do(r, http.MethodPut, "/edit-account", `{"email":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w)["error"])
}

func TestListUsers(t *testing.T) {
	admin := &principal.Claims{Subject: "sub-a", Groups: []string{"admin"}}
	svc := &fakeService{userPage: &account.UserPage{Users: []models.User{}, Total: 0, Page: 2, Limit: 5}}
	r := newRouter(svc, admin)

	w := do(r, http.MethodGet, "/users?page=2&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Users retrieved successfully", body["message"])
	assert.Equal(t, float64(2), body["users"].(map[string]interface{})["page"])
	assert.Equal(t, 2, svc.page)
	assert.Equal(t, 5, svc.limit)

	// headers are honoured when the query is absent
	do(r, http.MethodGet, "/users", "", "page", "3", "limit", "7")
	assert.Equal(t, 3, svc.page)
	assert.Equal(t, 7, svc.limit)

	do(r, http.MethodGet, "/users?page=abc", "")
	assert.Equal(t, 0, svc.page)
}

func TestListUsers_RequiresAdmin(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc, userClaims)

	w := do(r, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied! Only admins can access this route.", decode(t, w)["error"])
	assert.Zero(t, svc.limit)
}
