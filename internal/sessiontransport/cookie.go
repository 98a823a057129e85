// Package sessiontransport moves session tokens between HTTP requests and the
// session store using signed cookies.
package sessiontransport

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/backstage/internal/cookie"
	"github.com/dmitrymomot/backstage/internal/session"
)

// Cookie is a cookie-based session transport. Load resolves the incoming
// request to a session (issuing an anonymous one when needed) and Store
// writes the resulting state back to the response.
type Cookie[Data any] struct {
	manager    *session.Manager[Data]
	cookies    *cookie.Manager
	cookieName string
}

// NewCookie creates a cookie transport with the given session manager and
// cookie manager.
func NewCookie[Data any](manager *session.Manager[Data], cookies *cookie.Manager, cookieName string) (*Cookie[Data], error) {
	if manager == nil {
		return nil, errors.New("sessiontransport: session manager is required")
	}
	if cookies == nil {
		return nil, errors.New("sessiontransport: cookie manager is required")
	}
	if cookieName == "" {
		cookieName = "session"
	}
	return &Cookie[Data]{manager: manager, cookies: cookies, cookieName: cookieName}, nil
}

// Manager exposes the underlying session manager for callers that persist
// session changes without touching cookies.
func (t *Cookie[Data]) Manager() *session.Manager[Data] {
	return t.manager
}

// Load resolves the request to a session. Missing, invalid, or expired
// cookies all fall back to a fresh anonymous session rather than an error.
func (t *Cookie[Data]) Load(r *http.Request) (session.Session[Data], error) {
	token, err := t.cookies.GetSigned(r, t.cookieName)
	if err == nil {
		s, err := t.manager.GetByToken(r.Context(), token)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
			return session.Session[Data]{}, err
		}
	}

	return t.manager.New(r.Context())
}

// Store writes the session cookie with a MaxAge matching the remaining
// session lifetime.
func (t *Cookie[Data]) Store(w http.ResponseWriter, s session.Session[Data]) error {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge <= 0 {
		t.cookies.Delete(w, t.cookieName)
		return nil
	}
	return t.cookies.SetSigned(w, t.cookieName, s.Token, cookie.WithMaxAge(maxAge))
}

// Authenticate binds the session to a user and refreshes the cookie with the
// rotated token.
func (t *Cookie[Data]) Authenticate(w http.ResponseWriter, r *http.Request, s *session.Session[Data], userID uuid.UUID) error {
	if err := t.manager.Authenticate(r.Context(), s, userID); err != nil {
		return err
	}
	return t.Store(w, *s)
}

// Logout deletes the session and clears the cookie.
func (t *Cookie[Data]) Logout(w http.ResponseWriter, r *http.Request, s session.Session[Data]) error {
	if err := t.manager.Delete(r.Context(), s.ID); err != nil {
		return err
	}
	t.cookies.Delete(w, t.cookieName)
	return nil
}
