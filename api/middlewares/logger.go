package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"biteclub/utils"
)

// RequestLogger writes one line per request through the application logger.
func RequestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start).Round(time.Millisecond)
		switch {
		case status >= 500:
			logger.Error("[http] %s %s → %d (%v)", c.Request.Method, c.Request.URL.Path, status, elapsed)
		case status >= 400:
			logger.Warn("[http] %s %s → %d (%v)", c.Request.Method, c.Request.URL.Path, status, elapsed)
		default:
			logger.Debug("[http] %s %s → %d (%v)", c.Request.Method, c.Request.URL.Path, status, elapsed)
		}
	}
}
