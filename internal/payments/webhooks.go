package payments

import (
	"net/http"

	"github.com/buildwithgo/amaro-webhooks/addons/openapi"
)

const SignatureScheme = "webhookSignature"

var HealthRoute = openapi.CreateRoute(openapi.RouteConfig{
	Method:      openapi.MethodGet,
	Path:        "/health",
	Summary:     "Health check endpoint",
	Description: "Checks the health status of the API",
	OperationID: "healthCheck",
	Tags:        []string{"health"},
	Responses: openapi.Responses{
		http.StatusOK: {
			Description: "Health check successful",
			Content: openapi.Content{
				"application/json": {Schema: HealthStatus{}},
			},
		},
	},
})

var PaymentWebhook = openapi.CreateWebhook(openapi.Webhook{
	Method:      openapi.MethodPost,
	Path:        "/webhooks/payment",
	Summary:     "Payment webhook endpoint",
	Description: "Receives payment status updates from payment processor",
	OperationID: "handlePaymentWebhook",
	Tags:        []string{"payments"},
	Request: &openapi.Request{
		Body: &openapi.RequestBody{
			Content: openapi.Content{
				"application/json": {Schema: PaymentEvent{}},
			},
			Required:    true,
			Description: "Payment event data",
		},
	},
	Responses: openapi.Responses{
		http.StatusOK: {Description: "Webhook processed successfully"},
		http.StatusBadRequest: {
			Description: "Invalid webhook payload",
			Content: openapi.Content{
				"application/json": {Schema: ErrorResponse{}},
			},
		},
		http.StatusUnauthorized: {Description: "Invalid webhook signature"},
	},
	Security: []openapi.SecurityRequirement{
		{SignatureScheme: {}},
	},
})

var RefundWebhook = openapi.CreateWebhook(openapi.Webhook{
	Method:      openapi.MethodPost,
	Path:        "/webhooks/refund",
	Summary:     "Refund webhook endpoint",
	Description: "Receives refund status updates",
	Request: &openapi.Request{
		Body: &openapi.RequestBody{
			Content: openapi.Content{
				"application/json": {Schema: RefundEvent{}},
			},
		},
	},
	Responses: openapi.Responses{
		http.StatusOK: {Description: "Refund webhook processed successfully"},
	},
})

// DocumentConfig describes the Payment API document.
func DocumentConfig() openapi.DocumentConfig {
	return openapi.DocumentConfig{
		OpenAPI: "3.1.0",
		Info: openapi.Info{
			Title:       "Payment API",
			Version:     "1.0.0",
			Description: "API for processing payments with webhook support",
		},
		Servers: []openapi.Server{
			{URL: "https://api.example.com/v1", Description: "Production server"},
		},
		Components: &openapi.Components{
			SecuritySchemes: map[string]*openapi.SecurityScheme{
				SignatureScheme: {
					Type:        "apiKey",
					In:          "header",
					Name:        "X-Webhook-Signature",
					Description: "HMAC signature for webhook verification",
				},
			},
		},
	}
}
