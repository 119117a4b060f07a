package openapi

import (
	"fmt"
	"net/http"

	amaro "github.com/buildwithgo/amaro-webhooks"
)

// ScalarHTML returns a simple HTML page that loads the Scalar API reference.
// url is the path to the OpenAPI JSON file (e.g. "/doc").
func ScalarHTML(url string) string {
	return fmt.Sprintf(`<!doctype html>
<html>
  <head>
    <title>API Reference</title>
    <meta charset="utf-8" />
    <meta
      name="viewport"
      content="width=device-width, initial-scale=1" />
    <style>
      body {
        margin: 0;
      }
    </style>
  </head>
  <body>
    <script
      id="api-reference"
      data-url="%s"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
  </body>
</html>`, url)
}

// Mount serves the document at path (JSON, or YAML with ?format=yaml) and a
// Scalar reference page at path + "/ui". The document is assembled per
// request so routes registered after Mount are included. middlewares wrap
// all three routes, including the OPTIONS route on path.
func Mount(app *amaro.App, g *Generator, path string, cfg DocumentConfig, middlewares ...amaro.Middleware) error {
	if err := app.GET(path, func(c *amaro.Context) error {
		doc, err := g.Document(cfg)
		if err != nil {
			return err
		}
		format := FormatJSON
		if c.QueryParam("format") == string(FormatYAML) {
			format = FormatYAML
		}
		data, err := Render(doc, format)
		if err != nil {
			return err
		}
		contentType := "application/json"
		if format == FormatYAML {
			contentType = "application/yaml"
		}
		return c.Blob(http.StatusOK, contentType, data)
	}, middlewares...); err != nil {
		return err
	}

	if err := app.OPTIONS(path, func(c *amaro.Context) error {
		c.Writer.Header().Set("Allow", "GET, OPTIONS")
		c.Status(http.StatusNoContent)
		return nil
	}, middlewares...); err != nil {
		return err
	}

	return app.GET(path+"/ui", func(c *amaro.Context) error {
		return c.HTML(http.StatusOK, ScalarHTML(path))
	}, middlewares...)
}
