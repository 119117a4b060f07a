package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"

	amaro "github.com/buildwithgo/amaro-webhooks"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the per-client token bucket.
type RateLimiterConfig struct {
	// Rate is the sustained number of requests per second per client.
	Rate float64
	// Burst is the bucket size.
	Burst int
	// KeyFunc identifies the client. Default is the remote IP.
	KeyFunc func(c *amaro.Context) string
	// IdleTTL is how long an unused bucket is kept. Default is 3 minutes.
	IdleTTL time.Duration
	// Now is used for idle eviction. Default is time.Now.
	Now func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter rejects requests with 429 once a client exceeds rps requests
// per second with bursts of up to burst.
func RateLimiter(rps float64, burst int) amaro.Middleware {
	return RateLimiterWithConfig(RateLimiterConfig{Rate: rps, Burst: burst})
}

func RateLimiterWithConfig(cfg RateLimiterConfig) amaro.Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteIP
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 3 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*clientBucket)
		lastSweep = cfg.Now()
	)

	bucket := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := cfg.Now()
		if now.Sub(lastSweep) > cfg.IdleTTL {
			for k, b := range clients {
				if now.Sub(b.lastSeen) > cfg.IdleTTL {
					delete(clients, k)
				}
			}
			lastSweep = now
		}

		b, ok := clients[key]
		if !ok {
			b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)}
			clients[key] = b
		}
		b.lastSeen = now
		return b.limiter
	}

	return func(next amaro.Handler) amaro.Handler {
		return func(c *amaro.Context) error {
			if !bucket(cfg.KeyFunc(c)).Allow() {
				c.Writer.Header().Set("Retry-After", "1")
				return amaro.NewHTTPError(http.StatusTooManyRequests)
			}
			return next(c)
		}
	}
}

func remoteIP(c *amaro.Context) string {
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
