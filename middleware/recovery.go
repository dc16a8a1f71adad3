package middleware

import (
	"fmt"

	"noteshelf/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					zap.String("error", fmt.Sprint(rec)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", c.GetString(ContextRequestID)),
					zap.Stack("stack"),
				)
				utils.TrackError("panic")
				utils.InternalError(c, "Internal server error")
			}
		}()
		c.Next()
	}
}
