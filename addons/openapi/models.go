package openapi

// OpenAPI represents the root document of an OpenAPI 3.0 or 3.1 specification.
type OpenAPI struct {
	OpenAPI    string                `json:"openapi"`
	Info       Info                  `json:"info"`
	Servers    []Server              `json:"servers,omitempty"`
	Paths      Paths                 `json:"paths"`
	Webhooks   Paths                 `json:"webhooks,omitempty"`
	Components *Components           `json:"components,omitempty"`
	Security   []SecurityRequirement `json:"security,omitempty"`

	// XWebhooks carries webhooks in 3.0 documents, which have no webhooks field.
	XWebhooks Paths `json:"x-webhooks,omitempty"`
}

type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type Paths map[string]*PathItem

type PathItem struct {
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Get         *Operation `json:"get,omitempty"`
	Put         *Operation `json:"put,omitempty"`
	Post        *Operation `json:"post,omitempty"`
	Delete      *Operation `json:"delete,omitempty"`
	Options     *Operation `json:"options,omitempty"`
	Head        *Operation `json:"head,omitempty"`
	Patch       *Operation `json:"patch,omitempty"`
	Trace       *Operation `json:"trace,omitempty"`
}

// Operation returns the operation stored under method, or nil.
func (p *PathItem) Operation(method Method) *Operation {
	switch method {
	case MethodGet:
		return p.Get
	case MethodPost:
		return p.Post
	case MethodPut:
		return p.Put
	case MethodDelete:
		return p.Delete
	case MethodPatch:
		return p.Patch
	case MethodOptions:
		return p.Options
	case MethodHead:
		return p.Head
	}
	return nil
}

// Empty reports whether no operation is set.
func (p *PathItem) Empty() bool {
	return p.Get == nil && p.Put == nil && p.Post == nil && p.Delete == nil &&
		p.Options == nil && p.Head == nil && p.Patch == nil && p.Trace == nil
}

// SetOperation stores op under method, replacing any previous operation.
func (p *PathItem) SetOperation(method Method, op *Operation) {
	switch method {
	case MethodGet:
		p.Get = op
	case MethodPost:
		p.Post = op
	case MethodPut:
		p.Put = op
	case MethodDelete:
		p.Delete = op
	case MethodPatch:
		p.Patch = op
	case MethodOptions:
		p.Options = op
	case MethodHead:
		p.Head = op
	}
}

type Operation struct {
	Tags        []string              `json:"tags,omitempty"`
	Summary     string                `json:"summary,omitempty"`
	Description string                `json:"description,omitempty"`
	OperationID string                `json:"operationId,omitempty"`
	Parameters  []*Parameter          `json:"parameters,omitempty"`
	RequestBody *RequestBodyObject    `json:"requestBody,omitempty"`
	Responses   map[string]*Response  `json:"responses"`
	Security    []SecurityRequirement `json:"security,omitempty"`
}

type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"` // query, header, path, cookie
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

type RequestBodyObject struct {
	Description string                      `json:"description,omitempty"`
	Content     map[string]*MediaTypeObject `json:"content"`
	Required    bool                        `json:"required,omitempty"`
}

type Response struct {
	Description string                      `json:"description"`
	Content     map[string]*MediaTypeObject `json:"content,omitempty"`
}

type MediaTypeObject struct {
	Schema *Schema `json:"schema,omitempty"`
}

type Components struct {
	Schemas         map[string]*Schema         `json:"schemas,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `json:"securitySchemes,omitempty"`
}

type SecurityScheme struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Name        string `json:"name,omitempty"`
	In          string `json:"in,omitempty"`
	Scheme      string `json:"scheme,omitempty"`
	Bearer      string `json:"bearerFormat,omitempty"`
}

type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Format               string             `json:"format,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Description          string             `json:"description,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Enum                 []interface{}      `json:"enum,omitempty"`
	Example              interface{}        `json:"example,omitempty"`
	Examples             []interface{}      `json:"examples,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	ExclusiveMinimum     *float64           `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum     *float64           `json:"exclusiveMaximum,omitempty"`
	MinLength            *uint64            `json:"minLength,omitempty"`
	MaxLength            *uint64            `json:"maxLength,omitempty"`
}
