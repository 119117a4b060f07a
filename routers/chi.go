package routers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	amaro "github.com/buildwithgo/amaro-webhooks"
	"github.com/go-chi/chi/v5"
)

var ErrRouteNotFound = errors.New("route not found")

type entry struct {
	route    amaro.Route
	wildcard string
}

// ChiRouter matches requests with a chi routing tree. Patterns accept
// :param, {param} and a trailing *wildcard segment.
type ChiRouter struct {
	mux               *chi.Mux
	routes            map[string]*entry // "METHOD pattern" -> entry
	globalMiddlewares []amaro.Middleware
}

// NewChiRouter creates a new instance of ChiRouter.
func NewChiRouter() *ChiRouter {
	return &ChiRouter{
		mux:    chi.NewRouter(),
		routes: make(map[string]*entry),
	}
}

// Use adds a router-level middleware. It only wraps routes added after the call.
func (r *ChiRouter) Use(middleware amaro.Middleware) {
	r.globalMiddlewares = append(r.globalMiddlewares, middleware)
}

func (r *ChiRouter) Add(method, path string, handler amaro.Handler, middlewares ...amaro.Middleware) error {
	method = strings.ToUpper(method)
	if !supportedMethod(method) {
		return fmt.Errorf("unsupported method %q", method)
	}
	if handler == nil {
		return fmt.Errorf("nil handler for %s %s", method, path)
	}

	pattern, wildcard, err := chiPattern(path)
	if err != nil {
		return err
	}

	if len(r.globalMiddlewares) > 0 {
		combined := make([]amaro.Middleware, 0, len(r.globalMiddlewares)+len(middlewares))
		combined = append(combined, r.globalMiddlewares...)
		combined = append(combined, middlewares...)
		middlewares = combined
	}

	finalHandler := handler
	if len(middlewares) > 0 {
		finalHandler = amaro.Compile(handler, middlewares...)
	}

	// chi only decides whether a pattern matches; the amaro handler is looked
	// up from routes by the matched pattern.
	r.mux.Method(method, pattern, http.NotFoundHandler())
	r.routes[method+" "+pattern] = &entry{
		route: amaro.Route{
			Method:      method,
			Path:        path,
			Handler:     finalHandler,
			Middlewares: middlewares,
		},
		wildcard: wildcard,
	}
	return nil
}

func (r *ChiRouter) Find(method, path string, ctx *amaro.Context) (*amaro.Route, error) {
	if !supportedMethod(method) {
		return nil, ErrRouteNotFound
	}
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, method, path) || len(rctx.RoutePatterns) == 0 {
		return nil, ErrRouteNotFound
	}

	e, ok := r.routes[method+" "+rctx.RoutePatterns[len(rctx.RoutePatterns)-1]]
	if !ok {
		return nil, ErrRouteNotFound
	}

	if ctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				key = e.wildcard
			}
			ctx.AddParam(key, rctx.URLParams.Values[i])
		}
	}
	return &e.route, nil
}

// Routes lists registered routes sorted by method, then path.
func (r *ChiRouter) Routes() []amaro.Route {
	routes := make([]amaro.Route, 0, len(r.routes))
	for _, e := range r.routes {
		routes = append(routes, e.route)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Method != routes[j].Method {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	return routes
}

// chiPattern rewrites :param segments to {param} and a trailing *name to
// chi's anonymous "*", returning the wildcard name.
func chiPattern(path string) (string, string, error) {
	if path == "" {
		path = "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	if path == "/" {
		return path, "", nil
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	var wildcard string
	for i, part := range parts {
		switch {
		case part == "":
			return "", "", fmt.Errorf("empty segment in path %q", path)
		case part[0] == ':':
			parts[i] = "{" + part[1:] + "}"
		case part[0] == '*':
			if i != len(parts)-1 {
				return "", "", fmt.Errorf("wildcard must be the last segment in %q", path)
			}
			wildcard = part[1:]
			if wildcard == "" {
				wildcard = "*"
			}
			parts[i] = "*"
		}
	}
	return "/" + strings.Join(parts, "/"), wildcard, nil
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
		http.MethodConnect, http.MethodTrace:
		return true
	}
	return false
}
