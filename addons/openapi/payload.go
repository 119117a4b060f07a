package openapi

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrUnknownWebhook  = errors.New("openapi: webhook not registered")
	ErrNoRequestSchema = errors.New("openapi: webhook has no request schema for media type")
)

// ValidationError is a single payload violation.
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationResult is the outcome of validating a payload.
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidatePayload checks body against the request schema documented for the
// latest webhook registered under path and method. Hidden webhooks are
// included.
func (g *Generator) ValidatePayload(path string, method Method, mediaType string, body []byte) (*ValidationResult, error) {
	op, src := g.webhookOperation(path, method)
	if op == nil {
		return nil, errors.Wrapf(ErrUnknownWebhook, "%s %s", method, path)
	}
	if op.RequestBody == nil || op.RequestBody.Content[mediaType] == nil || op.RequestBody.Content[mediaType].Schema == nil {
		return nil, errors.Wrapf(ErrNoRequestSchema, "%s %s %s", method, path, mediaType)
	}

	schema, err := src.resolve(op.RequestBody.Content[mediaType].Schema)
	if err != nil {
		return nil, err
	}
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, errors.Wrap(err, "marshal schema")
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, errors.Wrap(err, "validate payload")
	}

	res := &ValidationResult{IsValid: result.Valid()}
	if !result.Valid() {
		res.Errors = make([]ValidationError, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			res.Errors = append(res.Errors, ValidationError{
				Field:       e.Field(),
				Description: e.Description(),
			})
		}
	}
	return res, nil
}
