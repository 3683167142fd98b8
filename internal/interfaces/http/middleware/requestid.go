// Package middleware provides the gin middleware chain of the TCKDB HTTP
// API: request IDs, request logging, metrics, panic recovery, and CORS.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the gin context key holding the request ID.
const requestIDKey = "request_id"

// RequestID returns middleware that assigns each request a correlation ID.
// A client-supplied X-Request-ID is honored so IDs survive proxy hops;
// otherwise a fresh UUID is generated.  The ID is echoed on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// ContextRequestID returns the request ID assigned by RequestID, or "" when
// the middleware did not run.
func ContextRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
