package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin lets the request through when the caller has the admin role
// attribute or belongs to the admin group. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		if !claims.HasAdminRole() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied! Only admins can access this route."})
			return
		}
		c.Next()
	}
}
