package openapi

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidMethod = errors.New("openapi: invalid method")
	ErrEmptyPath     = errors.New("openapi: empty path")
	ErrNoResponses   = errors.New("openapi: at least one response is required")
	ErrInvalidStatus = errors.New("openapi: invalid response status code")
)

// Method is a lower-case HTTP verb as used for OpenAPI operation keys.
type Method string

const (
	MethodGet     Method = "get"
	MethodPost    Method = "post"
	MethodPut     Method = "put"
	MethodDelete  Method = "delete"
	MethodPatch   Method = "patch"
	MethodHead    Method = "head"
	MethodOptions Method = "options"
)

// Methods returns every supported method.
func Methods() []Method {
	return []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions}
}

func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions:
		return true
	}
	return false
}

// HTTP returns the method in the form net/http and routers expect.
func (m Method) HTTP() string {
	return strings.ToUpper(string(m))
}

// MediaType pairs a media type with a schema. Schema is either a *Schema,
// a reflect.Type, or any Go value whose type is reflected into a schema when
// the descriptor is registered. Descriptors never look inside it.
type MediaType struct {
	Schema any
}

// Content maps a media type such as "application/json" to its schema.
type Content map[string]MediaType

type RequestBody struct {
	Description string
	Content     Content
	Required    bool
}

type Request struct {
	Body *RequestBody
}

type ResponseConfig struct {
	Description string
	Content     Content
}

// Responses is keyed by HTTP status code.
type Responses map[int]ResponseConfig

// SecurityRequirement maps a security scheme name to the scopes it needs.
type SecurityRequirement map[string][]string

// RouteConfig describes a routed operation for the generated document.
type RouteConfig struct {
	Method      Method
	Path        string
	Summary     string
	Description string
	OperationID string
	Tags        []string
	Request     *Request
	Responses   Responses
	Security    []SecurityRequirement
	// Hide keeps the operation out of generated documents.
	Hide bool
}

// Webhook describes a callback the API sends to its consumers. Path is the
// webhook's name in the document's webhooks map; it is never routed.
type Webhook RouteConfig

// CreateWebhook returns w unchanged. It exists so webhook definitions read as
// declarations and are typed as Webhook at the definition site.
func CreateWebhook(w Webhook) Webhook {
	return w
}

// CreateRoute returns r unchanged.
func CreateRoute(r RouteConfig) RouteConfig {
	return r
}

// Validate checks the shape the generator depends on: a known method, a
// non-empty path and at least one response with a valid status code.
func (w Webhook) Validate() error {
	return validateConfig("webhook", RouteConfig(w))
}

func (r RouteConfig) Validate() error {
	return validateConfig("route", r)
}

func validateConfig(kind string, cfg RouteConfig) error {
	if !cfg.Method.Valid() {
		return errors.Wrapf(ErrInvalidMethod, "%s %q: method %q", kind, cfg.Path, cfg.Method)
	}
	if cfg.Path == "" {
		return errors.Wrapf(ErrEmptyPath, "%s %s", kind, cfg.Method)
	}
	if len(cfg.Responses) == 0 {
		return errors.Wrapf(ErrNoResponses, "%s %s %s", kind, cfg.Method, cfg.Path)
	}
	for code := range cfg.Responses {
		if code < 100 || code > 599 {
			return errors.Wrapf(ErrInvalidStatus, "%s %s %s: %d", kind, cfg.Method, cfg.Path, code)
		}
	}
	return nil
}
