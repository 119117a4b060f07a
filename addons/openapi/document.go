package openapi

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// DefaultVersion is the OpenAPI version used when DocumentConfig leaves it
// empty. Webhooks need 3.1.
const DefaultVersion = "3.1.0"

var ErrUnsupportedVersion = errors.New("openapi: unsupported OpenAPI version")

// DocumentConfig holds the document-level fields merged with what the
// generator collected.
type DocumentConfig struct {
	OpenAPI    string
	Info       Info
	Servers    []Server
	Components *Components
	Security   []SecurityRequirement
}

// Document assembles a document from the registered routes and webhooks.
// 3.1 documents list webhooks under "webhooks"; 3.0 documents, which have no
// such field, carry them as the "x-webhooks" extension.
func (g *Generator) Document(cfg DocumentConfig) (*OpenAPI, error) {
	version := cfg.OpenAPI
	if version == "" {
		version = DefaultVersion
	}
	if !strings.HasPrefix(version, "3.0") && !strings.HasPrefix(version, "3.1") {
		return nil, errors.Wrap(ErrUnsupportedVersion, version)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	info := cfg.Info
	if info.Title == "" && info.Version == "" {
		info = g.Spec.Info
	}

	doc := &OpenAPI{
		OpenAPI:  version,
		Info:     info,
		Servers:  cfg.Servers,
		Paths:    make(Paths, len(g.Spec.Paths)),
		Security: cfg.Security,
	}
	copyPaths(doc.Paths, g.Spec.Paths)

	if len(g.webhooks) > 0 {
		webhooks := make(Paths, len(g.webhooks))
		copyPaths(webhooks, g.webhooks)
		if strings.HasPrefix(version, "3.1") {
			doc.Webhooks = webhooks
		} else {
			doc.XWebhooks = webhooks
		}
	}

	components := &Components{}
	if len(g.Spec.Components.Schemas) > 0 {
		components.Schemas = make(map[string]*Schema, len(g.Spec.Components.Schemas))
		for name, s := range g.Spec.Components.Schemas {
			components.Schemas[name] = s
		}
	}
	if cfg.Components != nil {
		for name, s := range cfg.Components.Schemas {
			if components.Schemas == nil {
				components.Schemas = make(map[string]*Schema)
			}
			components.Schemas[name] = s
		}
		if len(cfg.Components.SecuritySchemes) > 0 {
			components.SecuritySchemes = make(map[string]*SecurityScheme, len(cfg.Components.SecuritySchemes))
			for name, s := range cfg.Components.SecuritySchemes {
				components.SecuritySchemes[name] = s
			}
		}
	}
	if len(components.Schemas) > 0 || len(components.SecuritySchemes) > 0 {
		doc.Components = components
	}
	return doc, nil
}

// copyPaths copies the path items so later registrations, which write into
// the generator's items, do not show through a returned document.
func copyPaths(dst, src Paths) {
	for path, item := range src {
		cp := *item
		dst[path] = &cp
	}
}

// Format selects the encoding used by Render and WriteFile.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Render encodes doc as two-space indented JSON or as YAML. 3.0 documents
// get 3.0 schema keywords, see downgradeSchemas.
func Render(doc *OpenAPI, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}
	if strings.HasPrefix(doc.OpenAPI, "3.0") {
		if data, err = downgrade(data, true); err != nil {
			return nil, err
		}
	}
	if format != FormatYAML {
		return data, nil
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return nil, errors.Wrap(err, "convert document to yaml")
	}
	return out, nil
}

// WriteFile renders doc in the format implied by path and writes it.
func WriteFile(doc *OpenAPI, path string) error {
	data, err := Render(doc, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// Validate checks doc with kin-openapi. kin-openapi reads 3.0 documents, so
// schemas are downgraded first. The 3.1 webhooks field is allowed as a
// sibling; its operations are checked by Webhook.Validate at registration.
func Validate(ctx context.Context, doc *OpenAPI) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}
	if data, err = downgrade(data, false); err != nil {
		return err
	}

	loader := openapi3.NewLoader()
	t, err := loader.LoadFromData(data)
	if err != nil {
		return errors.Wrap(err, "load document")
	}
	return errors.Wrap(t.Validate(ctx, openapi3.AllowExtraSiblingFields("webhooks")), "invalid document")
}

// downgrade rewrites the 3.1 schema keywords in an encoded document to their
// 3.0 form. data is returned unchanged when nothing needed rewriting.
func downgrade(data []byte, indent bool) ([]byte, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	if !downgradeSchemas(v) {
		return data, nil
	}
	var (
		out []byte
		err error
	)
	if indent {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	return out, errors.Wrap(err, "marshal document")
}

// downgradeSchemas turns a numeric exclusiveMinimum or exclusiveMaximum into
// minimum or maximum plus the boolean flag, and drops array-valued examples
// in favour of example. It reports whether anything changed.
func downgradeSchemas(v interface{}) bool {
	changed := false
	switch node := v.(type) {
	case map[string]interface{}:
		for _, bound := range [][2]string{{"exclusiveMinimum", "minimum"}, {"exclusiveMaximum", "maximum"}} {
			if n, ok := node[bound[0]].(float64); ok {
				node[bound[1]] = n
				node[bound[0]] = true
				changed = true
			}
		}
		if exs, ok := node["examples"].([]interface{}); ok {
			if _, has := node["example"]; !has && len(exs) > 0 {
				node["example"] = exs[0]
			}
			delete(node, "examples")
			changed = true
		}
		for _, child := range node {
			if downgradeSchemas(child) {
				changed = true
			}
		}
	case []interface{}:
		for _, child := range node {
			if downgradeSchemas(child) {
				changed = true
			}
		}
	}
	return changed
}
