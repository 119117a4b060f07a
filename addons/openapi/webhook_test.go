package openapi_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/buildwithgo/amaro-webhooks/addons/openapi"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookEvent struct {
	Event string `json:"event" example:"payment.completed"`
	Data  struct {
		ID string `json:"id" example:"payment_123"`
	} `json:"data"`
}

func TestCreateWebhook(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "/webhooks/payment", expected: "/webhooks/payment"},
		{path: "/webhooks/github", expected: "/webhooks/github"},
		{path: "/api/webhooks/stripe", expected: "/api/webhooks/stripe"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			config := openapi.Webhook{
				Method: openapi.MethodPost,
				Path:   tt.path,
				Request: &openapi.Request{
					Body: &openapi.RequestBody{
						Content: openapi.Content{
							"application/json": {Schema: webhookEvent{}},
						},
						Required: true,
					},
				},
				Responses: openapi.Responses{
					http.StatusOK:         {Description: "Webhook received successfully"},
					http.StatusBadRequest: {Description: "Invalid webhook payload"},
				},
			}

			webhook := openapi.CreateWebhook(config)

			assert.Equal(t, config, webhook)
			assert.Equal(t, tt.expected, webhook.Path)
			assert.Same(t, config.Request, webhook.Request)
		})
	}
}

func TestCreateWebhook_Minimal(t *testing.T) {
	webhook := openapi.CreateWebhook(openapi.Webhook{
		Method: openapi.MethodPost,
		Path:   "/webhooks/minimal",
		Responses: openapi.Responses{
			200: {Description: "OK"},
		},
	})

	assert.Equal(t, openapi.Webhook{
		Method: openapi.MethodPost,
		Path:   "/webhooks/minimal",
		Responses: openapi.Responses{
			200: {Description: "OK"},
		},
	}, webhook)
	assert.Nil(t, webhook.Request)
	assert.Nil(t, webhook.Tags)
	assert.Nil(t, webhook.Security)
	assert.Empty(t, webhook.Summary)
	assert.Empty(t, webhook.OperationID)
	assert.False(t, webhook.Hide)
}

func TestCreateWebhook_Hide(t *testing.T) {
	webhook := openapi.CreateWebhook(openapi.Webhook{
		Method: openapi.MethodPost,
		Path:   "/webhooks/hidden",
		Hide:   true,
		Responses: openapi.Responses{
			200: {Description: "Hidden webhook"},
		},
	})

	assert.True(t, webhook.Hide)
}

func TestCreateWebhook_AllMethods(t *testing.T) {
	methods := openapi.Methods()
	require.Len(t, methods, 7)

	for _, method := range methods {
		webhook := openapi.CreateWebhook(openapi.Webhook{
			Method: method,
			Path:   fmt.Sprintf("/webhooks/%s", method),
			Responses: openapi.Responses{
				200: {Description: fmt.Sprintf("%s webhook", strings.ToUpper(string(method)))},
			},
		})

		assert.Equal(t, method, webhook.Method)
		assert.NoError(t, webhook.Validate())
	}
}

func TestCreateWebhook_Complex(t *testing.T) {
	type requestSchema struct {
		Type string `json:"type" validate:"oneof=payment refund"`
		Data struct {
			TransactionID string  `json:"transaction_id"`
			Amount        float64 `json:"amount"`
			Currency      string  `json:"currency"`
		} `json:"data"`
		Timestamp string `json:"timestamp" format:"date-time"`
	}

	webhook := openapi.CreateWebhook(openapi.Webhook{
		Method:      openapi.MethodPost,
		Path:        "/webhooks/payment-processor",
		Summary:     "Payment processor webhook",
		Description: "Receives payment and refund notifications",
		OperationID: "handlePaymentWebhook",
		Tags:        []string{"webhooks", "payments"},
		Request: &openapi.Request{
			Body: &openapi.RequestBody{
				Content: openapi.Content{
					"application/json": {Schema: requestSchema{}},
				},
				Required:    true,
				Description: "Payment event data",
			},
		},
		Responses: openapi.Responses{
			200: {Description: "Successfully processed webhook"},
			400: {Description: "Invalid request format"},
			401: {Description: "Unauthorized"},
			500: {Description: "Internal server error"},
		},
		Security: []openapi.SecurityRequirement{
			{"webhookSignature": {}},
		},
	})

	assert.Equal(t, "Payment processor webhook", webhook.Summary)
	assert.Equal(t, "Receives payment and refund notifications", webhook.Description)
	assert.Equal(t, "handlePaymentWebhook", webhook.OperationID)
	assert.Equal(t, []string{"webhooks", "payments"}, webhook.Tags)
	assert.Equal(t, []openapi.SecurityRequirement{{"webhookSignature": {}}}, webhook.Security)
}

func TestCreateRoute(t *testing.T) {
	route := openapi.RouteConfig{
		Method:    openapi.MethodGet,
		Path:      "/health",
		Responses: openapi.Responses{200: {Description: "OK"}},
	}
	assert.Equal(t, route, openapi.CreateRoute(route))
}

func TestWebhook_Validate(t *testing.T) {
	ok := openapi.Responses{200: {Description: "OK"}}

	tests := []struct {
		name    string
		webhook openapi.Webhook
		wantErr error
	}{
		{
			name:    "valid",
			webhook: openapi.Webhook{Method: openapi.MethodPost, Path: "/webhooks/a", Responses: ok},
		},
		{
			name:    "unknown method",
			webhook: openapi.Webhook{Method: "trace", Path: "/webhooks/a", Responses: ok},
			wantErr: openapi.ErrInvalidMethod,
		},
		{
			name:    "upper case method",
			webhook: openapi.Webhook{Method: "POST", Path: "/webhooks/a", Responses: ok},
			wantErr: openapi.ErrInvalidMethod,
		},
		{
			name:    "empty path",
			webhook: openapi.Webhook{Method: openapi.MethodPost, Responses: ok},
			wantErr: openapi.ErrEmptyPath,
		},
		{
			name:    "no responses",
			webhook: openapi.Webhook{Method: openapi.MethodPost, Path: "/webhooks/a"},
			wantErr: openapi.ErrNoResponses,
		},
		{
			name: "bad status code",
			webhook: openapi.Webhook{Method: openapi.MethodPost, Path: "/webhooks/a", Responses: openapi.Responses{
				42: {Description: "?"},
			}},
			wantErr: openapi.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.webhook.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMethod_HTTP(t *testing.T) {
	assert.Equal(t, http.MethodPost, openapi.MethodPost.HTTP())
	assert.Equal(t, http.MethodOptions, openapi.MethodOptions.HTTP())
}
