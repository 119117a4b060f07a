package amaro

// Route is a registered handler together with the pattern it was added under.
// Handler already has the route middlewares compiled in.
type Route struct {
	Method      string
	Path        string
	Handler     Handler
	Middlewares []Middleware
}

// Router stores routes and matches requests against them.
type Router interface {
	Add(method, path string, handler Handler, middlewares ...Middleware) error
	Use(middleware Middleware)
	// Find matches method and path. When ctx is non-nil the captured path
	// parameters are added to it.
	Find(method, path string, ctx *Context) (*Route, error)
	Routes() []Route
}

func WithRouter(router Router) AppOption {
	return func(app *App) {
		app.router = router
	}
}
