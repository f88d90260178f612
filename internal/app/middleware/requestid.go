package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"valsia/internal/pkg/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestID 沿用客户端传入的 X-Request-ID，没有则生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(logging.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
