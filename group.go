package amaro

import "net/http"

// Group registers routes under a shared path prefix. Middlewares added to the
// group run before the route's own middlewares.
type Group struct {
	prefix      string
	router      Router
	middlewares []Middleware
}

// Group creates a route group on the app.
func (a *App) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{prefix: prefix, router: a.router, middlewares: middlewares}
}

func (g *Group) Use(middleware Middleware) {
	g.middlewares = append(g.middlewares, middleware)
}

func (g *Group) Prefix() string {
	return g.prefix
}

func (g *Group) Add(method, path string, handler Handler, middlewares ...Middleware) error {
	if len(g.middlewares) > 0 {
		middlewares = append(append(make([]Middleware, 0, len(g.middlewares)+len(middlewares)), g.middlewares...), middlewares...)
	}
	return g.router.Add(method, g.prefix+path, handler, middlewares...)
}

func (g *Group) GET(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodGet, path, handler, middlewares...)
}

func (g *Group) POST(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodPost, path, handler, middlewares...)
}

func (g *Group) PUT(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodPut, path, handler, middlewares...)
}

func (g *Group) DELETE(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodDelete, path, handler, middlewares...)
}

func (g *Group) PATCH(path string, handler Handler, middlewares ...Middleware) error {
	return g.Add(http.MethodPatch, path, handler, middlewares...)
}

// Group nests a group. The child inherits a copy of the parent's middlewares.
func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	inherited := append(append(make([]Middleware, 0, len(g.middlewares)+len(middlewares)), g.middlewares...), middlewares...)
	return &Group{prefix: g.prefix + prefix, router: g.router, middlewares: inherited}
}
