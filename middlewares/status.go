package middlewares

import (
	"net/http"

	amaro "github.com/buildwithgo/amaro-webhooks"
	"github.com/felixge/httpsnoop"
)

// captureStatus swaps c.Writer for a wrapper that records the status code
// written downstream. The returned func reports it, falling back to the code
// the app's error handler will use for err.
func captureStatus(c *amaro.Context) func(err error) int {
	status := 0
	c.Writer = httpsnoop.Wrap(c.Writer, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				if status == 0 {
					status = code
				}
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				if status == 0 {
					status = http.StatusOK
				}
				return next(b)
			}
		},
	})
	return func(err error) int {
		if status != 0 {
			return status
		}
		return amaro.StatusCode(err)
	}
}

func routePattern(c *amaro.Context) string {
	if r := c.Route(); r != nil {
		return r.Path
	}
	return "unmatched"
}
