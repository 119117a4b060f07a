package middlewares

import (
	"time"

	amaro "github.com/buildwithgo/amaro-webhooks"
	"github.com/sirupsen/logrus"
)

// Logger writes one structured entry per request. Server errors are logged
// at error level, client errors at warn, everything else at info.
func Logger(logger logrus.FieldLogger) amaro.Middleware {
	return func(next amaro.Handler) amaro.Handler {
		return func(c *amaro.Context) error {
			start := time.Now()
			status := captureStatus(c)
			err := next(c)

			code := status(err)
			entry := logger.WithFields(logrus.Fields{
				"method":   c.Request.Method,
				"path":     c.Request.URL.Path,
				"route":    routePattern(c),
				"status":   code,
				"duration": time.Since(start),
			})
			if rid, ok := c.Get(RequestIDKey); ok {
				entry = entry.WithField("request_id", rid)
			}
			if err != nil {
				entry = entry.WithError(err)
			}

			switch {
			case code >= 500:
				entry.Error("request failed")
			case code >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request served")
			}
			return err
		}
	}
}
