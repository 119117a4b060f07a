package middlewares

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	amaro "github.com/buildwithgo/amaro-webhooks"
	"github.com/pkg/errors"
)

const DefaultSignatureHeader = "X-Webhook-Signature"

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrBodyTooLarge     = errors.New("request body too large")
)

// SignatureConfig holds the configuration for the Signature middleware.
type SignatureConfig struct {
	// Secret is the shared HMAC key. Required.
	Secret string

	// Header carries the hex HMAC-SHA256 of the raw body, optionally
	// prefixed with "sha256=". Default is DefaultSignatureHeader.
	Header string

	// MaxBodyBytes caps the body size. Larger bodies are rejected with 413.
	// Default is 1 MiB.
	MaxBodyBytes int64

	// ErrorHandler is called when verification fails.
	ErrorHandler func(c *amaro.Context, err error) error

	// Skipper defines a function to skip middleware.
	Skipper func(c *amaro.Context) bool
}

func DefaultSignatureConfig() SignatureConfig {
	return SignatureConfig{
		Header:       DefaultSignatureHeader,
		MaxBodyBytes: 1 << 20,
		Skipper:      func(c *amaro.Context) bool { return false },
		ErrorHandler: func(c *amaro.Context, err error) error {
			return amaro.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
		},
	}
}

// Signature verifies webhook request bodies signed with secret.
func Signature(secret string) amaro.Middleware {
	config := DefaultSignatureConfig()
	config.Secret = secret
	return SignatureWithConfig(config)
}

// SignatureWithConfig returns a Signature middleware with custom configuration.
// The body is restored after reading so handlers can decode it again.
func SignatureWithConfig(config SignatureConfig) amaro.Middleware {
	if config.Secret == "" {
		panic("Signature: secret is required")
	}
	defaults := DefaultSignatureConfig()
	if config.Header == "" {
		config.Header = defaults.Header
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if config.Skipper == nil {
		config.Skipper = defaults.Skipper
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = defaults.ErrorHandler
	}

	return func(next amaro.Handler) amaro.Handler {
		return func(c *amaro.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			provided := c.GetHeader(config.Header)
			if provided == "" {
				return config.ErrorHandler(c, ErrMissingSignature)
			}

			var body []byte
			if c.Request.Body != nil {
				var err error
				body, err = io.ReadAll(io.LimitReader(c.Request.Body, config.MaxBodyBytes+1))
				_ = c.Request.Body.Close()
				if err != nil {
					return amaro.NewHTTPError(http.StatusBadRequest, "unreadable body").SetInternal(err)
				}
				if int64(len(body)) > config.MaxBodyBytes {
					return amaro.NewHTTPError(http.StatusRequestEntityTooLarge, ErrBodyTooLarge.Error()).SetInternal(ErrBodyTooLarge)
				}
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))

			if !VerifySignature(config.Secret, body, provided) {
				return config.ErrorHandler(c, ErrInvalidSignature)
			}
			return next(c)
		}
	}
}

// Sign returns the lowercase hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether provided is the signature of body.
func VerifySignature(secret string, body []byte, provided string) bool {
	got, err := hex.DecodeString(strings.TrimPrefix(provided, "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}
