package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	amaro "github.com/buildwithgo/amaro-webhooks"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Bind decodes the request body into a new instance of T and validates it
// against its `validate` struct tags. An empty body yields the zero value.
func Bind[T any](c *amaro.Context) (*T, error) {
	var req T
	if c.Request.Body != nil {
		defer c.Request.Body.Close()
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return nil, amaro.NewHTTPError(http.StatusBadRequest, "Invalid Request").SetInternal(err)
		}
	}

	t := reflect.TypeOf(req)
	if t != nil && t.Kind() == reflect.Struct {
		if err := validate.Struct(&req); err != nil {
			return nil, amaro.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
	}
	return &req, nil
}

func validationMessage(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			fields[e.Field()] = "failed " + e.Tag()
		}
		return fields
	}
	fields["error"] = err.Error()
	return fields
}

type TypedHandler[Req any, Res any] func(*amaro.Context, *Req) (*Res, error)

// Handle routes handler on app and documents route with the generator.
func (g *Generator) Handle(app *amaro.App, route RouteConfig, handler amaro.Handler, middlewares ...amaro.Middleware) error {
	if err := g.Route(route); err != nil {
		return err
	}
	return app.Add(route.Method.HTTP(), route.Path, handler, middlewares...)
}

// WrapHandler documents route and returns a handler that binds and validates
// Req, calls handler and writes Res as JSON. A JSON request body and a 200
// response are documented from Req and Res when route does not declare them.
// It panics if route is invalid.
func WrapHandler[Req any, Res any](g *Generator, route RouteConfig, handler TypedHandler[Req, Res]) amaro.Handler {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	resType := reflect.TypeOf((*Res)(nil)).Elem()

	if route.Request == nil && reqType.Kind() == reflect.Struct && reqType.NumField() > 0 {
		route.Request = &Request{
			Body: &RequestBody{
				Description: "Request Body",
				Required:    true,
				Content:     Content{"application/json": {Schema: reqType}},
			},
		}
	}
	if len(route.Responses) == 0 {
		route.Responses = Responses{
			http.StatusOK: {
				Description: "OK",
				Content:     Content{"application/json": {Schema: resType}},
			},
		}
	}

	if err := g.Route(route); err != nil {
		panic(fmt.Sprintf("openapi: WrapHandler: %v", err))
	}

	return func(c *amaro.Context) error {
		req, err := Bind[Req](c)
		if err != nil {
			return err
		}
		res, err := handler(c, req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, res)
	}
}
