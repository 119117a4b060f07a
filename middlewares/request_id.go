package middlewares

import (
	amaro "github.com/buildwithgo/amaro-webhooks"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	HeaderRequestID = "X-Request-ID"
)

// RequestID reuses the caller's X-Request-ID or generates a UUID, and exposes
// it on the response and in the context under RequestIDKey.
func RequestID() amaro.Middleware {
	return func(next amaro.Handler) amaro.Handler {
		return func(c *amaro.Context) error {
			rid := c.GetHeader(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Writer.Header().Set(HeaderRequestID, rid)
			c.Set(RequestIDKey, rid)
			return next(c)
		}
	}
}
