package router

import (
	"context"
	"net/http"
	"time"
)

// Context is the default request context. It delegates context.Context
// behavior to the request's context and resolves path parameters via
// ServeMux pattern values.
type Context struct {
	w http.ResponseWriter
	r *http.Request
}

// NewContext creates a default context for the given request.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{w: w, r: r}
}

func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

func (c *Context) Err() error {
	return c.r.Context().Err()
}

func (c *Context) Value(key any) any {
	return c.r.Context().Value(key)
}

// SetValue stores a value in the request's context so later middleware and
// the handler observe it.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// Request returns the HTTP request associated with this context.
func (c *Context) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the HTTP response writer associated with this context.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the value of the named path parameter, e.g. "id" for a route
// registered as "/api/speakers/{id}".
func (c *Context) Param(key string) string {
	return c.r.PathValue(key)
}
