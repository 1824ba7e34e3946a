package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/accounthub/account-service/pkg/apperror"
	"github.com/accounthub/account-service/pkg/validate"
	"github.com/gin-gonic/gin"
)

// ValidateEmail normalizes the "email" field of a JSON body in place and
// rejects the request when it is missing or malformed.
func ValidateEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]interface{}
		raw, err := io.ReadAll(c.Request.Body)
		if err == nil && len(bytes.TrimSpace(raw)) > 0 {
			err = json.Unmarshal(raw, &body)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		email, _ := body["email"].(string)
		normalized, err := validate.Email(email)
		if err != nil {
			c.AbortWithStatusJSON(apperror.Status(err), gin.H{"error": apperror.Message(err)})
			return
		}
		body["email"] = normalized

		rewritten, err := json.Marshal(body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(rewritten))
		c.Request.ContentLength = int64(len(rewritten))
		c.Next()
	}
}
