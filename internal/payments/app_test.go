package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildwithgo/amaro-webhooks/addons/openapi"
	"github.com/buildwithgo/amaro-webhooks/middlewares"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayment = `{
	"event": "payment.completed",
	"data": {
		"payment_id": "pay_1234567890",
		"amount": 2500,
		"currency": "USD",
		"customer_id": "cust_abc123"
	},
	"timestamp": "2023-01-01T12:00:00Z"
}`

func testConfig() Config {
	return Config{
		Addr:         ":0",
		Output:       "debug.json",
		LogLevel:     "info",
		DocOrigins:   []string{"*"},
		RateLimit:    1000,
		RateBurst:    1000,
		MaxBodyBytes: 1 << 20,
	}
}

func newService(t *testing.T, cfg Config) *Service {
	t.Helper()
	logger, _ := test.NewNullLogger()
	svc, err := New(cfg, logger, prometheus.NewRegistry())
	require.NoError(t, err)
	return svc
}

func TestService_Health(t *testing.T) {
	svc := newService(t, testConfig())

	w := svc.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middlewares.HeaderRequestID))
}

func TestService_Doc(t *testing.T) {
	svc := newService(t, testConfig())

	w := svc.App.Test(httptest.NewRequest(http.MethodGet, DocPath, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	assert.Equal(t, "3.1.0", doc["openapi"])
	assert.Equal(t, "Payment API", doc["info"].(map[string]interface{})["title"])

	webhooks, ok := doc["webhooks"].(map[string]interface{})
	require.True(t, ok, "document has no webhooks")
	assert.Contains(t, webhooks, "/webhooks/payment")
	assert.Contains(t, webhooks, "/webhooks/refund")

	payment := webhooks["/webhooks/payment"].(map[string]interface{})["post"].(map[string]interface{})
	assert.Equal(t, "handlePaymentWebhook", payment["operationId"])
	assert.Equal(t, []interface{}{map[string]interface{}{SignatureScheme: []interface{}{}}}, payment["security"])

	paths := doc["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/health")
	assert.NotContains(t, paths, "/webhooks/payment")

	components := doc["components"].(map[string]interface{})
	assert.Contains(t, components["securitySchemes"], SignatureScheme)
	schemas := components["schemas"].(map[string]interface{})
	assert.Contains(t, schemas, "PaymentEvent")

	amount := schemas["PaymentData"].(map[string]interface{})["properties"].(map[string]interface{})["amount"].(map[string]interface{})
	assert.Equal(t, "number", amount["type"])
	assert.Equal(t, 0.0, amount["exclusiveMinimum"])
	assert.Equal(t, 2500.0, amount["example"])

	status := schemas["HealthStatus"].(map[string]interface{})["properties"].(map[string]interface{})["status"].(map[string]interface{})
	assert.Equal(t, []interface{}{"ok", "error"}, status["examples"])

	t.Run("cross origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, DocPath, nil)
		req.Header.Set("Origin", "https://viewer.example.com")
		w := svc.App.Test(req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("ui", func(t *testing.T) {
		w := svc.App.Test(httptest.NewRequest(http.MethodGet, DocPath+"/ui", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "@scalar/api-reference")
	})
}

func TestService_Document(t *testing.T) {
	svc := newService(t, testConfig())

	doc, err := svc.Document(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Webhooks, 2)
	assert.Contains(t, doc.Paths, "/health")

	path := filepath.Join(t.TempDir(), "debug.json")
	require.NoError(t, openapi.WriteFile(doc, path))
}

func TestService_ReceivePayment(t *testing.T) {
	svc := newService(t, testConfig())

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, PaymentWebhook.Path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return svc.App.Test(req)
	}

	t.Run("valid", func(t *testing.T) {
		w := post(validPayment)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	})

	t.Run("fractional amount", func(t *testing.T) {
		w := post(strings.Replace(validPayment, "2500", "0.5", 1))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	invalid := map[string]string{
		"wrong event":      strings.Replace(validPayment, "payment.completed", "payment.unknown", 1),
		"missing data":     `{"event":"payment.completed","timestamp":"2023-01-01T12:00:00Z"}`,
		"bad currency":     strings.Replace(validPayment, `"USD"`, `"DOLLARS"`, 1),
		"not json":         `event=payment.completed`,
		"amount as string": strings.Replace(validPayment, "2500", `"2500"`, 1),
		"zero amount":      strings.Replace(validPayment, "2500", "0", 1),
		"negative amount":  strings.Replace(validPayment, "2500", "-1", 1),
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			w := post(body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var res ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, "Invalid payload", res.Error)
		})
	}
}

func TestService_ReceiveRefund(t *testing.T) {
	svc := newService(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, RefundWebhook.Path,
		strings.NewReader(`{"event":"refund.processed","refund_id":"re_1","amount":12.5}`))
	w := svc.App.Test(req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestService_SignedReceiver(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookSecret = "whsec_test"
	svc := newService(t, cfg)

	send := func(signature string) int {
		req := httptest.NewRequest(http.MethodPost, PaymentWebhook.Path, strings.NewReader(validPayment))
		if signature != "" {
			req.Header.Set(middlewares.DefaultSignatureHeader, signature)
		}
		return svc.App.Test(req).Code
	}

	assert.Equal(t, http.StatusUnauthorized, send(""))
	assert.Equal(t, http.StatusUnauthorized, send(middlewares.Sign("wrong", []byte(validPayment))))
	assert.Equal(t, http.StatusOK, send(middlewares.Sign(cfg.WebhookSecret, []byte(validPayment))))
}

func TestService_ReceiverBodyLimit(t *testing.T) {
	oversized := strings.Replace(validPayment, "cust_abc123", strings.Repeat("c", 512), 1)

	t.Run("unsigned", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxBodyBytes = int64(len(validPayment))
		svc := newService(t, cfg)

		req := httptest.NewRequest(http.MethodPost, PaymentWebhook.Path, strings.NewReader(validPayment))
		require.Equal(t, http.StatusOK, svc.App.Test(req).Code)

		req = httptest.NewRequest(http.MethodPost, PaymentWebhook.Path, strings.NewReader(oversized))
		w := svc.App.Test(req)
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var res ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "Payload too large", res.Error)
	})

	t.Run("signed", func(t *testing.T) {
		cfg := testConfig()
		cfg.WebhookSecret = "whsec_test"
		cfg.MaxBodyBytes = int64(len(validPayment))
		svc := newService(t, cfg)

		req := httptest.NewRequest(http.MethodPost, PaymentWebhook.Path, strings.NewReader(oversized))
		req.Header.Set(middlewares.DefaultSignatureHeader, middlewares.Sign(cfg.WebhookSecret, []byte(oversized)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, svc.App.Test(req).Code)
	})
}

func TestService_RateLimitedReceiver(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	svc := newService(t, cfg)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, PaymentWebhook.Path, strings.NewReader(validPayment))
		return svc.App.Test(req).Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestService_Metrics(t *testing.T) {
	svc := newService(t, testConfig())
	svc.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

	w := svc.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `amaro_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
