// Package amaro implements a small HTTP framework with pluggable routers and
// an OpenAPI addon that documents routes and webhooks.
package amaro

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Handler is a function that handles an HTTP request.
// It returns an error which can be handled by middlewares or the framework.
type Handler func(*Context) error

// Middleware is a function that wraps a Handler to provide additional functionality.
type Middleware func(next Handler) Handler

// App is the main entry point for the Amaro framework.
// It holds the router, global middlewares, and a context pool.
type App struct {
	router       Router
	middlewares  []Middleware
	errorHandler ErrorHandler
	pool         *sync.Pool
}

// Use adds a global middleware to the application.
// Global middlewares are applied to all routes in the order they are added.
func (a *App) Use(middleware Middleware) {
	a.middlewares = append(a.middlewares, middleware)
}

// GET registers a new GET route with a handler and optional route-specific middlewares.
func (a *App) GET(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodGet, path, handler, middlewares...)
}

func (a *App) POST(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodPost, path, handler, middlewares...)
}

func (a *App) PUT(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodPut, path, handler, middlewares...)
}

func (a *App) DELETE(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodDelete, path, handler, middlewares...)
}

func (a *App) PATCH(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodPatch, path, handler, middlewares...)
}

func (a *App) OPTIONS(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodOptions, path, handler, middlewares...)
}

func (a *App) HEAD(path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(http.MethodHead, path, handler, middlewares...)
}

// Add registers a new route with the specified method, path, handler, and middlewares.
func (a *App) Add(method, path string, handler Handler, middlewares ...Middleware) error {
	return a.router.Add(method, path, handler, middlewares...)
}

// Mount serves a plain http.Handler for GET and HEAD on path.
func (a *App) Mount(path string, h http.Handler) error {
	handler := FromHTTPHandler(h)
	if err := a.router.Add(http.MethodGet, path, handler); err != nil {
		return err
	}
	return a.router.Add(http.MethodHead, path, handler)
}

func (a *App) Find(method, path string) (*Route, error) {
	return a.router.Find(method, path, nil)
}

func (a *App) Routes() []Route {
	return a.router.Routes()
}

// AppOption defines a function to configure the App during initialization.
type AppOption func(*App)

// New creates a new instance of the Amaro App. A router must be supplied
// with WithRouter.
func New(options ...AppOption) *App {
	app := &App{
		middlewares:  make([]Middleware, 0),
		errorHandler: DefaultErrorHandler,
		pool: &sync.Pool{
			New: func() interface{} {
				return NewContext(nil, nil)
			},
		},
	}

	for _, option := range options {
		option(app)
	}

	if app.router == nil {
		panic("amaro: no router configured, use amaro.WithRouter")
	}

	return app
}

func (a *App) Run(addr string) error {
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return http.ListenAndServe(addr, a)
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := a.pool.Get().(*Context)
	ctx.Reset(w, r)
	defer a.pool.Put(ctx)

	route, err := a.router.Find(r.Method, r.URL.Path, ctx)
	if err != nil {
		a.errorHandler(ctx, NewHTTPError(http.StatusNotFound, "404 page not found").SetInternal(err), http.StatusNotFound)
		return
	}
	ctx.route = route

	// route.Middlewares are already compiled into route.Handler
	if err := Compile(route.Handler, a.middlewares...)(ctx); err != nil {
		if ctx.Written() {
			return
		}
		a.errorHandler(ctx, err, StatusCode(err))
	}
}

// Test serves req through the app and returns the recorded response.
func (a *App) Test(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.ServeHTTP(w, req)
	return w
}

// FromHTTPHandler adapts a net/http handler to an amaro Handler.
func FromHTTPHandler(h http.Handler) Handler {
	return func(c *Context) error {
		h.ServeHTTP(c.Writer, c.Request)
		return nil
	}
}

func Chain(middlewares ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

func Compile(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
