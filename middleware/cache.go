package middleware

import "github.com/gin-gonic/gin"

// CacheControl sets the Cache-Control header on every response.
func CacheControl(value string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
