package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/backstage/internal/handler"
)

// statusCode is an interface that errors can implement to provide a custom
// HTTP status code without being an HTTPError.
type statusCode interface {
	StatusCode() int
}

// convertToHTTPError maps any error to an HTTPError. Unknown errors become a
// generic 500 so internals never leak into response bodies.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if sc, ok := err.(statusCode); ok {
		status := sc.StatusCode()
		return HTTPError{Status: status, Message: http.StatusText(status)}
	}

	return ErrInternalServerError
}

// JSONErrorHandler renders errors as {"error": "<message>"} JSON bodies.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}
