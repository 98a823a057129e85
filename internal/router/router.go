// Package router provides a small, type-safe HTTP router built on net/http's
// method-and-pattern ServeMux. Handlers receive a custom context type and
// return composable responses; errors and panics are funneled through a single
// error handler that renders structured JSON bodies.
package router

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"

	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/response"
)

// Router registers typed handlers on a shared ServeMux. Groups share the mux
// but carry their own middleware chain snapshot.
type Router[C handler.Context] struct {
	mux          *http.ServeMux
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger
}

// Option configures a Router during creation.
type Option[C handler.Context] func(*Router[C])

// WithErrorHandler sets a custom error handler for the router.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(r *Router[C]) {
		if h != nil {
			r.errorHandler = h
		}
	}
}

// WithContextFactory sets the context factory for the router.
func WithContextFactory[C handler.Context](f func(http.ResponseWriter, *http.Request) C) Option[C] {
	return func(r *Router[C]) {
		r.newContext = f
	}
}

// WithMiddleware adds global middleware to the router.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(r *Router[C]) {
		r.middlewares = append(r.middlewares, middlewares...)
	}
}

// WithLogger sets the logger used for panic reporting.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(r *Router[C]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a router. A context factory is required unless C is *Context.
func New[C handler.Context](opts ...Option[C]) *Router[C] {
	r := &Router[C]{
		mux:          http.NewServeMux(),
		errorHandler: response.JSONErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.newContext == nil {
		r.newContext = func(w http.ResponseWriter, req *http.Request) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, req)).(C)
			}
			panic("router: context factory is required for custom context types")
		}
	}

	// Unmatched paths render a JSON 404 instead of ServeMux's plain text.
	r.mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(w, req)
		r.errorHandler(ctx, response.ErrNotFound)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (r *Router[C]) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Get registers a handler for GET requests.
func (r *Router[C]) Get(pattern string, fn handler.HandlerFunc[C]) {
	r.handle(http.MethodGet, pattern, fn)
}

// Post registers a handler for POST requests.
func (r *Router[C]) Post(pattern string, fn handler.HandlerFunc[C]) {
	r.handle(http.MethodPost, pattern, fn)
}

// Put registers a handler for PUT requests.
func (r *Router[C]) Put(pattern string, fn handler.HandlerFunc[C]) {
	r.handle(http.MethodPut, pattern, fn)
}

// Delete registers a handler for DELETE requests.
func (r *Router[C]) Delete(pattern string, fn handler.HandlerFunc[C]) {
	r.handle(http.MethodDelete, pattern, fn)
}

// Use appends middleware. Middleware only applies to routes registered after
// the call, since chains are built at registration time.
func (r *Router[C]) Use(middlewares ...handler.Middleware[C]) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// Group creates a scope with its own middleware chain on the shared mux.
func (r *Router[C]) Group(fn func(g *Router[C])) {
	g := &Router[C]{
		mux:          r.mux,
		middlewares:  slices.Clone(r.middlewares),
		errorHandler: r.errorHandler,
		newContext:   r.newContext,
		logger:       r.logger,
	}
	fn(g)
}

// Mount attaches a plain http.Handler at the given ServeMux pattern,
// bypassing the typed handler pipeline. Used for static file serving.
func (r *Router[C]) Mount(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// handle registers a method-scoped route with the middleware chain captured
// at registration time.
func (r *Router[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	fn = chain(r.middlewares, fn)

	r.mux.HandleFunc(method+" "+pattern, func(w http.ResponseWriter, req *http.Request) {
		ww := &statusWriter{ResponseWriter: w}
		ctx := r.newContext(ww, req)

		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("panic in handler",
					"value", p,
					"method", req.Method,
					"path", req.URL.Path,
					"stack", string(debug.Stack()),
				)
				if !ww.written {
					r.errorHandler(ctx, response.ErrInternalServerError)
				}
			}
		}()

		resp := fn(ctx)
		if resp == nil {
			r.errorHandler(ctx, response.ErrInternalServerError)
			return
		}

		// The handler may have replaced the request via SetValue; render
		// against the context's current request.
		if err := resp(ww, ctx.Request()); err != nil {
			if !ww.written {
				r.errorHandler(ctx, err)
			}
		}
	})
}

// chain wraps a handler with middleware, outermost first.
func chain[C handler.Context](middlewares []handler.Middleware[C], fn handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		fn = middlewares[i](fn)
	}
	return fn
}

// statusWriter tracks whether a response has been written so error handling
// never double-writes headers.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(status int) {
	if w.written {
		return
	}
	w.status = status
	w.written = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the written status code, or zero if nothing was written.
func (w *statusWriter) Status() int {
	return w.status
}
