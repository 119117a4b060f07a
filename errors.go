package amaro

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code     int
	Message  interface{}
	Internal error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("code=%d, message=%v", e.Code, e.Message)
}

// NewHTTPError creates a new HTTPError.
func NewHTTPError(code int, message ...interface{}) *HTTPError {
	he := &HTTPError{Code: code, Message: http.StatusText(code)}
	if len(message) > 0 {
		he.Message = message[0]
	}
	return he
}

// SetInternal sets the internal error.
func (e *HTTPError) SetInternal(err error) *HTTPError {
	e.Internal = err
	return e
}

// Unwrap returns the internal error.
func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// StatusCode maps err to the status the default error handler responds with.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// ErrorHandler writes the response for an error returned by a handler.
type ErrorHandler func(c *Context, err error, code int)

// DefaultErrorHandler responds with a plain text body. HTTPError messages are
// written as-is; other errors use their Error() text.
func DefaultErrorHandler(c *Context, err error, code int) {
	msg := err.Error()
	var he *HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	http.Error(c.Writer, msg, code)
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(handler ErrorHandler) AppOption {
	return func(app *App) {
		app.errorHandler = handler
	}
}
