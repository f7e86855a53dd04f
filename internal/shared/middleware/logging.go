package middleware

import (
	"time"

	"wanderly/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is echoed back on every response
const HeaderRequestID = "X-Request-ID"

// RequestLogger tags the request context with a request id, taken from the
// caller when present, and logs the request once the handler chain is done.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))

		c.Next()

		log.LogHTTPRequest(c, time.Since(start))
		if c.Writer.Status() >= 500 {
			for _, e := range c.Errors {
				log.LogHTTPError(c, e.Err)
			}
		}
	}
}
