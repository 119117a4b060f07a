package openapi

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const componentsPrefix = "#/components/schemas/"

// Generator collects documented routes, webhooks and the schemas they
// reference. Spec holds the routed paths and components; webhooks are kept
// apart and added to documents by Document.
type Generator struct {
	Spec *OpenAPI

	mu       sync.Mutex
	webhooks Paths
	hooks    []Webhook
}

func NewGenerator(info Info) *Generator {
	return &Generator{
		Spec: &OpenAPI{
			OpenAPI: DefaultVersion,
			Info:    info,
			Paths:   make(Paths),
			Components: &Components{
				Schemas: make(map[string]*Schema),
			},
		},
		webhooks: make(Paths),
	}
}

// AddRoute stores op under path and method, replacing an existing operation.
func (g *Generator) AddRoute(method, path string, op Operation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	addOperation(g.Spec.Paths, Method(strings.ToLower(method)), path, &op)
}

// Route documents a routed operation. Hidden routes are validated but not
// documented.
func (g *Generator) Route(r RouteConfig) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Hide {
		return nil
	}

	path, params := documentPath(r.Path)
	op := g.operation(r)
	op.Parameters = mergeParameters(op.Parameters, params)

	g.mu.Lock()
	defer g.mu.Unlock()
	addOperation(g.Spec.Paths, r.Method, path, op)
	return nil
}

// Webhook registers w under its path. Registering the same path and method
// again replaces the earlier operation, and a hidden registration removes it
// from documents. Hidden webhooks are kept in Webhooks but never documented,
// and their schemas stay out of Components.
func (g *Generator) Webhook(w Webhook) error {
	if err := w.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, w)
	if w.Hide {
		removeOperation(g.webhooks, w.Method, w.Path)
		return nil
	}
	addOperation(g.webhooks, w.Method, w.Path, g.operationLocked(RouteConfig(w)))
	return nil
}

// Webhooks returns the registered webhook descriptors in registration order.
func (g *Generator) Webhooks() []Webhook {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Webhook, len(g.hooks))
	copy(out, g.hooks)
	return out
}

// webhookOperation returns the operation of the latest registration for path
// and method, together with the generator whose components its references
// point into. Hidden webhooks are reflected into a scratch generator.
func (g *Generator) webhookOperation(path string, method Method) (*Operation, *Generator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.hooks) - 1; i >= 0; i-- {
		h := g.hooks[i]
		if h.Path != path || h.Method != method {
			continue
		}
		if !h.Hide {
			if item, ok := g.webhooks[path]; ok {
				if op := item.Operation(method); op != nil {
					return op, g
				}
			}
		}
		scratch := NewGenerator(Info{})
		return scratch.operationLocked(RouteConfig(h)), scratch
	}
	return nil, nil
}

func addOperation(paths Paths, method Method, path string, op *Operation) {
	if paths[path] == nil {
		paths[path] = &PathItem{}
	}
	paths[path].SetOperation(method, op)
}

func removeOperation(paths Paths, method Method, path string) {
	item, ok := paths[path]
	if !ok {
		return
	}
	item.SetOperation(method, nil)
	if item.Empty() {
		delete(paths, path)
	}
}

func (g *Generator) operation(cfg RouteConfig) *Operation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.operationLocked(cfg)
}

func (g *Generator) operationLocked(cfg RouteConfig) *Operation {
	op := &Operation{
		Tags:        cfg.Tags,
		Summary:     cfg.Summary,
		Description: cfg.Description,
		OperationID: cfg.OperationID,
		Responses:   make(map[string]*Response, len(cfg.Responses)),
		Security:    cfg.Security,
	}

	if cfg.Request != nil && cfg.Request.Body != nil {
		op.RequestBody = &RequestBodyObject{
			Description: cfg.Request.Body.Description,
			Required:    cfg.Request.Body.Required,
			Content:     g.content(cfg.Request.Body.Content),
		}
	}

	for code, res := range cfg.Responses {
		op.Responses[strconv.Itoa(code)] = &Response{
			Description: res.Description,
			Content:     g.content(res.Content),
		}
	}
	return op
}

func (g *Generator) content(c Content) map[string]*MediaTypeObject {
	if len(c) == 0 {
		return nil
	}
	out := make(map[string]*MediaTypeObject, len(c))
	for mediaType, mt := range c {
		out[mediaType] = &MediaTypeObject{Schema: g.schemaFor(mt.Schema)}
	}
	return out
}

func (g *Generator) schemaFor(v any) *Schema {
	switch s := v.(type) {
	case nil:
		return nil
	case *Schema:
		return s
	case Schema:
		return &s
	case reflect.Type:
		return g.generateSchemaType(s)
	default:
		return g.generateSchemaType(reflect.TypeOf(v))
	}
}

// documentPath rewrites :param segments to {param} and returns the path
// parameters found.
func documentPath(path string) (string, []*Parameter) {
	parts := strings.Split(path, "/")
	var params []*Parameter
	for i, part := range parts {
		var name string
		switch {
		case strings.HasPrefix(part, ":"):
			name = part[1:]
			parts[i] = "{" + name + "}"
		case len(part) > 2 && part[0] == '{' && part[len(part)-1] == '}':
			name = part[1 : len(part)-1]
		default:
			continue
		}
		params = append(params, &Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   &Schema{Type: "string"},
		})
	}
	return strings.Join(parts, "/"), params
}

func mergeParameters(declared, implicit []*Parameter) []*Parameter {
	for _, p := range implicit {
		found := false
		for _, d := range declared {
			if d.In == p.In && d.Name == p.Name {
				found = true
				break
			}
		}
		if !found {
			declared = append(declared, p)
		}
	}
	return declared
}

// GenerateSchema creates a schema for v and registers it in Components if it's a struct
func (g *Generator) GenerateSchema(v interface{}) *Schema {
	if v == nil {
		return &Schema{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generateSchemaType(reflect.TypeOf(v))
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	rawMessageType = reflect.TypeOf(json.RawMessage{})
)

func (g *Generator) generateSchemaType(t reflect.Type) *Schema {
	if t == nil {
		return &Schema{}
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == rawMessageType {
		return &Schema{}
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "binary"}
		}
		return &Schema{
			Type:  "array",
			Items: g.generateSchemaType(t.Elem()),
		}
	case reflect.Map:
		return &Schema{
			Type:                 "object",
			AdditionalProperties: g.generateSchemaType(t.Elem()),
		}
	case reflect.Interface:
		return &Schema{}
	case reflect.Struct:
		if t == timeType {
			return &Schema{Type: "string", Format: "date-time"}
		}

		name := t.Name()
		if name == "" {
			return g.generateStructSchema(t)
		}

		if _, ok := g.Spec.Components.Schemas[name]; !ok {
			// Placeholder to prevent infinite recursion
			g.Spec.Components.Schemas[name] = &Schema{}
			g.Spec.Components.Schemas[name] = g.generateStructSchema(t)
		}
		return &Schema{Ref: componentsPrefix + name}

	default:
		return &Schema{Type: "string"}
	}
}

func (g *Generator) generateStructSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := field.Name
		if jsonTag != "" {
			if n := strings.Split(jsonTag, ",")[0]; n != "" {
				name = n
			}
		}

		prop := g.generateSchemaType(field.Type)
		if prop.Ref == "" {
			applyTags(prop, field)
		}
		if hasRule(field.Tag.Get("validate"), "required") {
			schema.Required = append(schema.Required, name)
		}
		schema.Properties[name] = prop
	}
	return schema
}

// applyTags documents description, format, example and examples, and the
// validator rules min, max, gt, lt, len and oneof on a property schema.
func applyTags(s *Schema, field reflect.StructField) {
	if d := field.Tag.Get("description"); d != "" {
		s.Description = d
	}
	if f := field.Tag.Get("format"); f != "" {
		s.Format = f
	}
	ft := field.Type
	for ft.Kind() == reflect.Ptr {
		ft = ft.Elem()
	}
	kind := ft.Kind()
	if ex, ok := field.Tag.Lookup("example"); ok {
		s.Example = typedValue(kind, ex)
	}
	if exs := field.Tag.Get("examples"); exs != "" {
		for _, ex := range strings.Split(exs, ",") {
			s.Examples = append(s.Examples, typedValue(kind, ex))
		}
	}

	for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
		key, arg, _ := strings.Cut(rule, "=")
		switch key {
		case "oneof":
			for _, v := range strings.Fields(arg) {
				s.Enum = append(s.Enum, typedValue(kind, v))
			}
		case "len":
			if n, err := strconv.ParseUint(arg, 10, 64); err == nil && s.Type == "string" {
				s.MinLength, s.MaxLength = &n, &n
			}
		case "min", "max":
			n, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				continue
			}
			switch s.Type {
			case "string":
				u := uint64(n)
				if key == "min" {
					s.MinLength = &u
				} else {
					s.MaxLength = &u
				}
			case "integer", "number":
				if key == "min" {
					s.Minimum = &n
				} else {
					s.Maximum = &n
				}
			}
		case "gt", "lt":
			n, err := strconv.ParseFloat(arg, 64)
			if err != nil || (s.Type != "integer" && s.Type != "number") {
				continue
			}
			if key == "gt" {
				s.ExclusiveMinimum = &n
			} else {
				s.ExclusiveMaximum = &n
			}
		}
	}
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}

// typedValue converts a tag value to the JSON type of kind so examples and
// enum values validate against the generated schema.
func typedValue(kind reflect.Kind, v string) interface{} {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}

// resolve returns a copy of s with component references inlined, as needed
// by validators that only see a single schema. References nested deeper than
// maxResolveDepth become empty schemas.
func (g *Generator) resolve(s *Schema) (*Schema, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolveLocked(s, 0)
}

const maxResolveDepth = 32

func (g *Generator) resolveLocked(s *Schema, depth int) (*Schema, error) {
	if s == nil {
		return nil, nil
	}
	if depth > maxResolveDepth {
		return &Schema{}, nil
	}
	if s.Ref != "" {
		name := strings.TrimPrefix(s.Ref, componentsPrefix)
		target, ok := g.Spec.Components.Schemas[name]
		if !ok {
			return nil, errors.Errorf("openapi: unresolved schema reference %q", s.Ref)
		}
		return g.resolveLocked(target, depth+1)
	}

	out := *s
	var err error
	if out.Items, err = g.resolveLocked(s.Items, depth+1); err != nil {
		return nil, err
	}
	if out.AdditionalProperties, err = g.resolveLocked(s.AdditionalProperties, depth+1); err != nil {
		return nil, err
	}
	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for name, prop := range s.Properties {
			if out.Properties[name], err = g.resolveLocked(prop, depth+1); err != nil {
				return nil, err
			}
		}
	}
	return &out, nil
}
