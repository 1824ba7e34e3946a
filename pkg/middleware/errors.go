package middleware

import (
	"github.com/accounthub/account-service/pkg/apperror"
	"github.com/accounthub/account-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error as {"error": message}.
// Unclassified errors become 500 "Internal Server Error"; all are logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperror.Status(err)
		if status >= 500 {
			logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		} else {
			logger.Warnf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		}
		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, gin.H{"error": apperror.Message(err)})
	}
}
