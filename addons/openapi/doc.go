// Package openapi generates OpenAPI 3.0 and 3.1 documents for amaro apps.
//
// Routes are documented from RouteConfig values or typed handlers, and
// webhooks from Webhook descriptors built with CreateWebhook. Schemas are
// reflected from Go types; struct tags `json`, `validate`, `description`,
// `format` and `example` refine them.
package openapi
