package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/accounthub/account-service/internal/sessions"
	"github.com/accounthub/account-service/pkg/principal"
	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.data)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken", "black-token":
		return &fakeToken{data: map[string]interface{}{
			"sub":            "user1",
			"username":       "test@example.com",
			"token_use":      "access",
			"cognito:groups": []string{"admin"},
		}}, nil
	case "nosub":
		return &fakeToken{data: map[string]interface{}{"token_use": "access"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

type brokenChecker struct{}

func (brokenChecker) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func serveAuth(t *testing.T, header string, revoked RevocationChecker) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}, revoked), func(c *gin.Context) {
		claims := ClaimsFrom(c)
		require.NotNil(t, claims)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject, "admin": claims.IsAdmin(), "token": AccessTokenFrom(c)})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func errorBody(t *testing.T, rw *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := serveAuth(t, "", nil)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, "Token not provided", errorBody(t, rw))
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	for _, h := range []string{"BadHeader", "Bearer", "Basic abc", "Bearer a b"} {
		rw := serveAuth(t, h, nil)
		require.Equal(t, http.StatusUnauthorized, rw.Code, h)
		require.Equal(t, "Token not provided", errorBody(t, rw))
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rw := serveAuth(t, "Bearer forged", nil)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, "Invalid token", errorBody(t, rw))

	rw = serveAuth(t, "Bearer nosub", nil)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serveAuth(t, "bearer goodtoken", nil)
	require.Equal(t, http.StatusOK, rw.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "user1", got["sub"])
	require.Equal(t, true, got["admin"])
	require.Equal(t, "goodtoken", got["token"])
}

func TestAuthMiddleware_RejectsBlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	bl := sessions.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	require.NoError(t, bl.Revoke(context.Background(), "black-token", 5*time.Second))

	rw := serveAuth(t, "Bearer black-token", bl)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, "Invalid token", errorBody(t, rw))

	// other tokens are unaffected
	require.Equal(t, http.StatusOK, serveAuth(t, "Bearer goodtoken", bl).Code)

	// revocation lapses with the token
	m.FastForward(6 * time.Second)
	require.Equal(t, http.StatusOK, serveAuth(t, "Bearer black-token", bl).Code)
}

func TestAuthMiddleware_RevocationCheckFailureFailsOpen(t *testing.T) {
	require.Equal(t, http.StatusOK, serveAuth(t, "Bearer goodtoken", brokenChecker{}).Code)
}

func TestRequireAdmin(t *testing.T) {
	run := func(claims *principal.Claims) *httptest.ResponseRecorder {
		g := gin.New()
		g.GET("/", func(c *gin.Context) {
			if claims != nil {
				c.Set(ClaimsKey, claims)
			}
			c.Next()
		}, RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
		rw := httptest.NewRecorder()
		g.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
		return rw
	}

	rw := run(nil)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, "User not authenticated", errorBody(t, rw))

	rw = run(&principal.Claims{Subject: "u", Groups: []string{"user"}})
	require.Equal(t, http.StatusForbidden, rw.Code)
	require.Equal(t, "Access denied! Only admins can access this route.", errorBody(t, rw))

	require.Equal(t, http.StatusOK, run(&principal.Claims{Subject: "u", Groups: []string{"admin"}}).Code)
	require.Equal(t, http.StatusOK, run(&principal.Claims{Subject: "u", Role: "admin"}).Code)
}
