package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
)

const (
	HeaderRequestID       = "X-Request-ID"
	ContextKeyRequestID   = "requestID"
	maxIncomingRequestIDs = 128
)

// RequestIDMiddleware echoes X-Request-ID or assigns a new KSUID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxIncomingRequestIDs {
			id = ksuid.New().String()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
