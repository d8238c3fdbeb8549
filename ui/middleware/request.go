package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inequalitymap/internal"
)

// RequestIDHeader carries the request ID in and out
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// RequestID tags each request with an ID, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the ID set by RequestID, or "" outside it
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger logs one line per request through the app logger
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start).Round(time.Microsecond)
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		switch {
		case status >= 500:
			logger.Error("[HTTP] %s %s %d %s id=%s errors=%s", c.Request.Method, path, status, elapsed, GetRequestID(c), c.Errors.String())
		case status >= 400:
			logger.Warn("[HTTP] %s %s %d %s id=%s", c.Request.Method, path, status, elapsed, GetRequestID(c))
		default:
			logger.Debug("[HTTP] %s %s %d %s id=%s", c.Request.Method, path, status, elapsed, GetRequestID(c))
		}
	}
}
