package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoicehub/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodyBytes caps request bodies at 10 MiB, enough for a
// receipt upload with headroom
const DefaultMaxBodyBytes int64 = 10 << 20

// BodyLimit rejects requests whose declared Content-Length exceeds the
// limit and caps the reader for chunked requests
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodePayloadTooLarge, "Request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
