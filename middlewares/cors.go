package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	amaro "github.com/buildwithgo/amaro-webhooks"
)

// CORSConfig defines the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists the origins allowed to read responses. "*" allows any.
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	// MaxAge is how long, in seconds, a preflight result may be cached.
	MaxAge int
}

// DefaultCORSConfig allows read-only access from any origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Accept", "Content-Type"},
		MaxAge:       600,
	}
}

// CORS sets Access-Control-* headers for allowed origins and answers
// preflight requests with 204. Preflights only reach the middleware on
// paths that have an OPTIONS route.
func CORS(config ...CORSConfig) amaro.Middleware {
	cfg := DefaultCORSConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	methods := strings.Join(cfg.AllowMethods, ",")
	headers := strings.Join(cfg.AllowHeaders, ",")

	return func(next amaro.Handler) amaro.Handler {
		return func(c *amaro.Context) error {
			origin := c.GetHeader("Origin")
			if origin == "" {
				return next(c)
			}

			allowed := ""
			for _, o := range cfg.AllowOrigins {
				if o == "*" || strings.EqualFold(o, origin) {
					allowed = o
					break
				}
			}
			if allowed == "" {
				if c.Request.Method == http.MethodOptions {
					return amaro.NewHTTPError(http.StatusForbidden, "origin not allowed")
				}
				return next(c)
			}

			h := c.Writer.Header()
			if allowed == "*" {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}

			if c.Request.Method != http.MethodOptions {
				return next(c)
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			c.Status(http.StatusNoContent)
			return nil
		}
	}
}
