package middleware

import (
	"strconv"
	"time"

	"noteshelf/utils"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware handles basic HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		utils.ActiveRequests.Inc()
		defer utils.ActiveRequests.Dec()

		c.Next()

		// route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		utils.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		utils.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		utils.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(c.Writer.Size()))

		if c.Writer.Status() >= 400 {
			utils.TrackError(errorType(c.Writer.Status()))
		}
	}
}

func errorType(status int) string {
	switch {
	case status == 401:
		return string(utils.KindAuth)
	case status == 404:
		return string(utils.KindNotFound)
	case status == 429:
		return string(utils.KindTooManyRequests)
	case status >= 500:
		return string(utils.KindServer)
	default:
		return "client_error"
	}
}

