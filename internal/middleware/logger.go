package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger logs every request on the metrics server through zerolog.
// Scrapes are frequent, so successful requests only log at debug.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		statusCode := c.Writer.Status()
		level := zerolog.DebugLevel
		if statusCode >= 500 {
			level = zerolog.ErrorLevel
		} else if statusCode >= 400 {
			level = zerolog.WarnLevel
		}

		event := log.WithLevel(level).
			Str("path", path).
			Int("status", statusCode).
			Str("method", c.Request.Method).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start))
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.Msg("incoming request")
	}
}
