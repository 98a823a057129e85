// Package middleware provides cross-cutting request middleware for the typed
// handler pipeline: request IDs, logging, and session management.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/logger"
)

// slowRequestThreshold marks requests worth a warning even when successful.
const slowRequestThreshold = time.Second

// Logging logs one line per request with method, path, status, and duration.
// Server errors log at error level, client errors and slow requests at warn.
func Logging[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			start := time.Now()
			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

				var err error
				if resp != nil {
					err = resp(rec, r)
				}

				// Propagated errors render after this point; take the status
				// from the error so the log line matches the wire.
				status := rec.status
				var coded interface{ StatusCode() int }
				if errors.As(err, &coded) {
					status = coded.StatusCode()
				}

				elapsed := time.Since(start)
				attrs := []slog.Attr{
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(status),
					logger.Duration(elapsed),
					logger.RequestID(GetRequestID(r.Context())),
					logger.Error(err),
				}

				level := slog.LevelInfo
				switch {
				case status >= http.StatusInternalServerError:
					level = slog.LevelError
				case status >= http.StatusBadRequest || elapsed > slowRequestThreshold:
					level = slog.LevelWarn
				}

				log.LogAttrs(r.Context(), level, "request", attrs...)
				return err
			}
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
