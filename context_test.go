package amaro

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type testEvent struct {
	Event string `json:"event"`
	ID    string `json:"id"`
}

func TestBindJSON(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"event":"payment.completed","id":"pay_1"}`))
		c := NewContext(httptest.NewRecorder(), req)

		var ev testEvent
		if err := c.BindJSON(&ev); err != nil {
			t.Fatalf("BindJSON failed: %v", err)
		}
		if ev.Event != "payment.completed" || ev.ID != "pay_1" {
			t.Errorf("Unexpected event: %+v", ev)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"event":`))
		c := NewContext(httptest.NewRecorder(), req)

		var ev testEvent
		err := c.BindJSON(&ev)
		if StatusCode(err) != http.StatusBadRequest {
			t.Errorf("Expected 400, got %v", err)
		}
	})
}

func TestContextState(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhooks/payment?format=yaml", nil)
	req.Header.Set("X-Webhook-Signature", "abc")
	c := NewContext(w, req)

	c.AddParam("name", "payment")
	if c.PathParam("name") != "payment" || c.PathParam("missing") != "" {
		t.Errorf("Unexpected params: %v", c.Params())
	}
	if c.QueryParam("format") != "yaml" {
		t.Errorf("Expected format=yaml, got %q", c.QueryParam("format"))
	}
	if c.GetHeader("X-Webhook-Signature") != "abc" {
		t.Error("Expected signature header")
	}

	if _, ok := c.Get("k"); ok {
		t.Error("Expected empty store")
	}
	c.Set("k", 1)
	if v, ok := c.Get("k"); !ok || v != 1 {
		t.Errorf("Expected k=1, got %v", v)
	}

	if c.Written() {
		t.Error("Expected nothing written yet")
	}
	c.Status(http.StatusAccepted)
	c.Status(http.StatusInternalServerError)
	if w.Code != http.StatusAccepted || !c.Written() {
		t.Errorf("Expected first status to win, got %d", w.Code)
	}

	c.Reset(httptest.NewRecorder(), req)
	if len(c.Params()) != 0 || c.Written() || c.Route() != nil {
		t.Error("Expected Reset to clear request state")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Expected Reset to clear the store")
	}
}

func TestGroup(t *testing.T) {
	var calls []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(c *Context) error {
				calls = append(calls, name)
				return next(c)
			}
		}
	}

	app := New(WithRouter(&mapRouter{routes: map[string]*Route{}}))
	hooks := app.Group("/webhooks", tag("group"))
	hooks.POST("/payment", func(c *Context) error {
		return c.String(http.StatusOK, "ok")
	}, tag("route"))
	nested := hooks.Group("/v2", tag("nested"))
	nested.PUT("/refund", func(c *Context) error { return nil })

	if hooks.Prefix() != "/webhooks" || nested.Prefix() != "/webhooks/v2" {
		t.Errorf("Unexpected prefixes %q %q", hooks.Prefix(), nested.Prefix())
	}

	w := app.Test(httptest.NewRequest(http.MethodPost, "/webhooks/payment", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if strings.Join(calls, ",") != "group,route" {
		t.Errorf("Expected group,route got %v", calls)
	}

	calls = nil
	app.Test(httptest.NewRequest(http.MethodPut, "/webhooks/v2/refund", nil))
	if strings.Join(calls, ",") != "group,nested" {
		t.Errorf("Expected group,nested got %v", calls)
	}
}

var errNoRoute = errors.New("no route")

// mapRouter matches exact paths only.
type mapRouter struct {
	routes map[string]*Route
}

func (r *mapRouter) Add(method, path string, handler Handler, middlewares ...Middleware) error {
	r.routes[method+" "+path] = &Route{Method: method, Path: path, Handler: Compile(handler, middlewares...), Middlewares: middlewares}
	return nil
}

func (r *mapRouter) Use(Middleware) {}

func (r *mapRouter) Find(method, path string, _ *Context) (*Route, error) {
	if route, ok := r.routes[method+" "+path]; ok {
		return route, nil
	}
	return nil, errNoRoute
}

func (r *mapRouter) Routes() []Route {
	out := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, *route)
	}
	return out
}
