package amaro

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Param is a single path parameter captured while matching a route.
type Param struct {
	Key   string
	Value string
}

// Context carries the request, the response writer and per-request state
// through handlers and middlewares. Contexts are pooled by App; do not keep
// references to them after the handler returns.
type Context struct {
	Request *http.Request
	Writer  http.ResponseWriter

	params []Param
	store  map[string]interface{}
	route  *Route
	status int
}

type ContextOption func(*Context)

// NewContext creates a new context for the request
func NewContext(w http.ResponseWriter, r *http.Request, options ...ContextOption) *Context {
	ctx := &Context{
		Request: r,
		Writer:  w,
		params:  make([]Param, 0, 4),
	}
	for _, option := range options {
		option(ctx)
	}
	return ctx
}

// Reset prepares a pooled context for a new request.
func (c *Context) Reset(w http.ResponseWriter, r *http.Request) {
	c.Request = r
	c.Writer = w
	c.params = c.params[:0]
	c.store = nil
	c.route = nil
	c.status = 0
}

// AddParam records a path parameter. Routers call it during Find.
func (c *Context) AddParam(key, value string) {
	c.params = append(c.params, Param{Key: key, Value: value})
}

// PathParam returns the value of the named path parameter, or "".
func (c *Context) PathParam(key string) string {
	for _, p := range c.params {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

func (c *Context) Params() []Param {
	return c.params
}

// Route returns the route matched for this request, nil before matching.
func (c *Context) Route() *Route {
	return c.route
}

func (c *Context) Set(key string, value interface{}) {
	if c.store == nil {
		c.store = make(map[string]interface{})
	}
	c.store[key] = value
}

func (c *Context) Get(key string) (interface{}, bool) {
	v, ok := c.store[key]
	return v, ok
}

func (c *Context) QueryParam(name string) string {
	return c.Request.URL.Query().Get(name)
}

func (c *Context) GetHeader(name string) string {
	return c.Request.Header.Get(name)
}

func (c *Context) GetCookie(name string) (*http.Cookie, error) {
	return c.Request.Cookie(name)
}

// Status writes the status code once. Later calls are ignored.
func (c *Context) Status(code int) {
	if c.status != 0 {
		return
	}
	c.status = code
	c.Writer.WriteHeader(code)
}

// Written reports whether a status code has been sent through the context.
func (c *Context) Written() bool {
	return c.status != 0
}

func (c *Context) Blob(code int, contentType string, b []byte) error {
	c.Writer.Header().Set("Content-Type", contentType)
	c.Status(code)
	_, err := c.Writer.Write(b)
	return err
}

func (c *Context) String(code int, s string) error {
	return c.Blob(code, "text/plain; charset=utf-8", []byte(s))
}

func (c *Context) HTML(code int, html string) error {
	return c.Blob(code, "text/html; charset=utf-8", []byte(html))
}

func (c *Context) JSON(code int, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	return c.Blob(code, "application/json", b)
}

// BindJSON decodes the request body into v.
func (c *Context) BindJSON(v interface{}) error {
	if c.Request.Body == nil {
		return NewHTTPError(http.StatusBadRequest, "empty request body")
	}
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil {
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err)).SetInternal(err)
	}
	return nil
}
