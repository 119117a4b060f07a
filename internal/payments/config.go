package payments

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config is read from PAYMENTDOC_* environment variables.
type Config struct {
	Addr          string `envconfig:"ADDR" default:":8080"`
	Output        string `envconfig:"OUTPUT" default:"debug.json"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`

	// DocOrigins may read the document cross-origin.
	DocOrigins []string `envconfig:"DOC_ORIGINS" default:"*"`
	// RateLimit and RateBurst bound webhook deliveries per client IP.
	RateLimit float64 `envconfig:"RATE_LIMIT" default:"10"`
	RateBurst int     `envconfig:"RATE_BURST" default:"20"`
	// MaxBodyBytes caps webhook delivery bodies.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("paymentdoc", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, errors.Wrapf(err, "PAYMENTDOC_LOG_LEVEL")
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst <= 0 {
		return Config{}, errors.New("PAYMENTDOC_RATE_LIMIT and PAYMENTDOC_RATE_BURST must be positive")
	}
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, errors.New("PAYMENTDOC_MAX_BODY_BYTES must be positive")
	}
	return cfg, nil
}
