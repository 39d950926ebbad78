// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"datasets/internal/core/apperror"
	appctx "datasets/internal/core/context"
	"datasets/pkg/logger"
)

// Recovery middleware recovers from panics and returns 500 error.
// Logs stack trace but never exposes internal details to client. The
// response is written here because handlers after it have already unwound.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)

				appErr := apperror.NewInternal(fmt.Errorf("panic: %v", err))
				_ = c.Error(appErr)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
					"details": map[string]any{"request_id": appctx.GetRequestID(c.Request.Context())},
				})
			}
		}()
		c.Next()
	}
}
