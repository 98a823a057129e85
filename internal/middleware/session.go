package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/response"
	"github.com/dmitrymomot/backstage/internal/session"
	"github.com/dmitrymomot/backstage/internal/sessiontransport"
)

type sessionCtxKey struct{}

// sessionState tracks the request's session and what the handler did to it,
// so the middleware writes the cookie exactly once per request.
type sessionState[Data any] struct {
	transport *sessiontransport.Cookie[Data]
	session   session.Session[Data]
	save      bool
	deleted   bool
	written   bool
}

// SessionConfig configures the session middleware.
type SessionConfig[C handler.Context, Data any] struct {
	Transport *sessiontransport.Cookie[Data]
	// RequireAuth rejects unauthenticated requests with 401 before the
	// handler runs.
	RequireAuth bool
}

// Session loads the request session and makes it available via GetSession.
func Session[C handler.Context, Data any](transport *sessiontransport.Cookie[Data]) handler.Middleware[C] {
	return SessionWithConfig[C](SessionConfig[C, Data]{Transport: transport})
}

// RequireAuth is Session with authentication enforcement enabled.
func RequireAuth[C handler.Context, Data any](transport *sessiontransport.Cookie[Data]) handler.Middleware[C] {
	return SessionWithConfig[C](SessionConfig[C, Data]{Transport: transport, RequireAuth: true})
}

// SessionWithConfig returns session middleware with the given configuration.
// A session always exists downstream; anonymous requests get a fresh one.
func SessionWithConfig[C handler.Context, Data any](cfg SessionConfig[C, Data]) handler.Middleware[C] {
	if cfg.Transport == nil {
		panic("middleware: session transport is required")
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			s, err := cfg.Transport.Load(ctx.Request())
			if err != nil {
				return response.Error(err)
			}

			st := &sessionState[Data]{transport: cfg.Transport, session: s}
			ctx.SetValue(sessionCtxKey{}, st)

			var resp handler.Response
			if cfg.RequireAuth && !s.IsAuthenticated() {
				resp = response.Error(response.ErrUnauthorized)
			} else {
				resp = next(ctx)
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				if st.save && !st.deleted {
					if err := cfg.Transport.Manager().Save(r.Context(), st.session); err != nil {
						return err
					}
				}
				if !st.written {
					if err := cfg.Transport.Store(w, st.session); err != nil {
						return err
					}
				}
				if resp == nil {
					return response.ErrInternalServerError
				}
				return resp(w, r)
			}
		}
	}
}

func sessionStateFromContext[Data any](ctx context.Context) (*sessionState[Data], bool) {
	st, ok := ctx.Value(sessionCtxKey{}).(*sessionState[Data])
	return st, ok
}

// GetSession returns the request session placed by the session middleware.
func GetSession[Data any](ctx context.Context) (session.Session[Data], bool) {
	st, ok := sessionStateFromContext[Data](ctx)
	if !ok {
		return session.Session[Data]{}, false
	}
	return st.session, true
}

// MustGetSession returns the request session or panics if the session
// middleware did not run.
func MustGetSession[Data any](ctx context.Context) session.Session[Data] {
	s, ok := GetSession[Data](ctx)
	if !ok {
		panic("middleware: session not found in context")
	}
	return s
}

// SetSession replaces the session payload; the middleware persists it when
// the response is written.
func SetSession[Data any](ctx context.Context, s session.Session[Data]) {
	st, ok := sessionStateFromContext[Data](ctx)
	if !ok {
		return
	}
	st.session = s
	st.save = true
}

// AuthenticateSession binds the request session to a user. The token rotates
// and the cookie is written immediately.
func AuthenticateSession[Data any](ctx handler.Context, userID uuid.UUID) error {
	st, ok := sessionStateFromContext[Data](ctx)
	if !ok {
		return session.ErrNotFound
	}
	if err := st.transport.Authenticate(ctx.ResponseWriter(), ctx.Request(), &st.session, userID); err != nil {
		return err
	}
	st.written = true
	return nil
}

// LogoutSession deletes the request session and clears the cookie.
func LogoutSession[Data any](ctx handler.Context) error {
	st, ok := sessionStateFromContext[Data](ctx)
	if !ok {
		return session.ErrNotFound
	}
	if err := st.transport.Logout(ctx.ResponseWriter(), ctx.Request(), st.session); err != nil {
		return err
	}
	st.deleted = true
	st.written = true
	return nil
}
