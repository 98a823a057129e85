package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrymomot/backstage/internal/middleware"
	"github.com/dmitrymomot/backstage/internal/response"
	"github.com/dmitrymomot/backstage/internal/session"
)

// maxBodySize caps JSON request bodies well above any legitimate payload.
const maxBodySize = 1 << 20

// SessionData is the application payload carried in sessions.
type SessionData struct {
	Username string `json:"username,omitempty"`
}

// Context is the request context for all API handlers.
type Context struct {
	w http.ResponseWriter
	r *http.Request
}

// NewContext creates a request context. Wired into the router as its context
// factory.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{w: w, r: r}
}

func (c *Context) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *Context) Err() error                  { return c.r.Context().Err() }
func (c *Context) Value(key any) any           { return c.r.Context().Value(key) }

// SetValue stores a value in the request's context.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// Request returns the underlying HTTP request.
func (c *Context) Request() *http.Request { return c.r }

// ResponseWriter returns the underlying response writer.
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }

// Param returns the named path parameter.
func (c *Context) Param(key string) string { return c.r.PathValue(key) }

// Bind decodes the JSON request body into v. Unknown payload shapes are the
// caller's concern; malformed JSON maps to 400.
func (c *Context) Bind(v any) error {
	body := http.MaxBytesReader(c.w, c.r.Body, maxBodySize)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return response.ErrBadRequest.WithMessage("Invalid JSON body")
	}
	return nil
}

// Session returns the request session.
func (c *Context) Session() session.Session[SessionData] {
	return middleware.MustGetSession[SessionData](c)
}

// Username returns the signed-in username, or an empty string for anonymous
// sessions.
func (c *Context) Username() string {
	s, ok := middleware.GetSession[SessionData](c)
	if !ok {
		return ""
	}
	return s.Data.Username
}
