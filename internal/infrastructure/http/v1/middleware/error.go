package middleware

import (
	"github.com/gin-gonic/gin"

	"bizbooks/internal/core/apperror"
	"bizbooks/pkg/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Causes of internal errors are logged, never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

func writeError(c *gin.Context, err error) {
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		appErr = apperror.NewInternal(err)
	}

	if appErr.Err != nil {
		logger.Error(c.Request.Context(), "request failed",
			"code", appErr.Code,
			"cause", appErr.Err,
		)
	}

	details := appErr.Details
	if appErr.Code == apperror.CodeInternal {
		details = map[string]any{"request_id": c.GetString("request_id")}
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": details,
	})
}
