package payments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	amaro "github.com/buildwithgo/amaro-webhooks"
	"github.com/buildwithgo/amaro-webhooks/addons/openapi"
	"github.com/buildwithgo/amaro-webhooks/middlewares"
	"github.com/buildwithgo/amaro-webhooks/routers"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	DocPath        = "/doc"
	ReceiverPrefix = "/webhooks"
)

// Service is the demo Payment API: a health route, the payment and refund
// webhooks, the generated document and local receivers for both webhooks.
type Service struct {
	App       *amaro.App
	Generator *openapi.Generator

	logger logrus.FieldLogger
}

// New wires the app. reg receives the HTTP metrics and is served on /metrics.
func New(cfg Config, logger logrus.FieldLogger, reg *prometheus.Registry) (*Service, error) {
	app := amaro.New(amaro.WithRouter(routers.NewChiRouter()))
	app.Use(amaro.Recovery(amaro.WithRecoveryLogger(logger)))
	app.Use(middlewares.RequestID())
	app.Use(middlewares.Logger(logger))
	app.Use(middlewares.Metrics(reg))

	gen := openapi.NewGenerator(DocumentConfig().Info)
	s := &Service{App: app, Generator: gen, logger: logger}

	if err := app.GET(HealthRoute.Path, openapi.WrapHandler(gen, HealthRoute, s.health)); err != nil {
		return nil, errors.Wrap(err, "register health route")
	}

	// Registration only documents webhooks; receivers are routed below.
	for _, w := range []openapi.Webhook{PaymentWebhook, RefundWebhook} {
		if err := gen.Webhook(w); err != nil {
			return nil, err
		}
	}

	cors := middlewares.CORS(middlewares.CORSConfig{
		AllowOrigins: cfg.DocOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Accept", "Content-Type"},
		MaxAge:       600,
	})
	if err := openapi.Mount(app, gen, DocPath, DocumentConfig(), cors); err != nil {
		return nil, errors.Wrap(err, "mount document")
	}
	if err := app.Mount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})); err != nil {
		return nil, errors.Wrap(err, "mount metrics")
	}

	// Receivers for the documented webhooks, for trying deliveries locally.
	mws := []amaro.Middleware{middlewares.RateLimiter(cfg.RateLimit, cfg.RateBurst)}
	if cfg.WebhookSecret != "" {
		mws = append(mws, middlewares.SignatureWithConfig(middlewares.SignatureConfig{
			Secret:       cfg.WebhookSecret,
			MaxBodyBytes: cfg.MaxBodyBytes,
		}))
	} else {
		logger.Warn("PAYMENTDOC_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}
	receivers := app.Group(ReceiverPrefix, mws...)
	for _, w := range []openapi.Webhook{PaymentWebhook, RefundWebhook} {
		path := strings.TrimPrefix(w.Path, ReceiverPrefix)
		if err := receivers.Add(w.Method.HTTP(), path, s.receive(w, cfg.MaxBodyBytes)); err != nil {
			return nil, errors.Wrapf(err, "register receiver for %s", w.Path)
		}
	}
	return s, nil
}

func (s *Service) health(c *amaro.Context, _ *struct{}) (*HealthStatus, error) {
	return &HealthStatus{Status: "ok"}, nil
}

// receive returns a handler that accepts deliveries of w whose body matches
// the documented request schema. Bodies over maxBytes get 413.
func (s *Service) receive(w openapi.Webhook, maxBytes int64) amaro.Handler {
	invalid := ErrorResponse{Error: "Invalid payload", Message: "payload does not match the " + w.Path + " schema"}
	tooLarge := ErrorResponse{Error: "Payload too large", Message: "payload exceeds " + strconv.FormatInt(maxBytes, 10) + " bytes"}

	return func(c *amaro.Context) error {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return c.JSON(http.StatusRequestEntityTooLarge, tooLarge)
			}
			return c.JSON(http.StatusBadRequest, invalid)
		}

		log := s.logger.WithField("webhook", w.Path)
		res, err := s.Generator.ValidatePayload(w.Path, w.Method, "application/json", body)
		if err != nil {
			log.WithError(err).Warn("webhook payload rejected")
			return c.JSON(http.StatusBadRequest, invalid)
		}
		if !res.IsValid {
			log.WithField("errors", res.Errors).Warn("webhook payload failed validation")
			return c.JSON(http.StatusBadRequest, invalid)
		}

		var envelope struct {
			Event string `json:"event"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return c.JSON(http.StatusBadRequest, invalid)
		}
		log.WithFields(logrus.Fields{
			"event":      envelope.Event,
			"request_id": requestID(c),
		}).Info("received webhook")

		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}

// Document assembles and validates the Payment API document.
func (s *Service) Document(ctx context.Context) (*openapi.OpenAPI, error) {
	doc, err := s.Generator.Document(DocumentConfig())
	if err != nil {
		return nil, err
	}
	if err := openapi.Validate(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func requestID(c *amaro.Context) string {
	rid, _ := c.Get(middlewares.RequestIDKey)
	s, _ := rid.(string)
	return s
}
