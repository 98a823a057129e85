package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backstage/internal/cookie"
	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/middleware"
	"github.com/dmitrymomot/backstage/internal/response"
	"github.com/dmitrymomot/backstage/internal/router"
	"github.com/dmitrymomot/backstage/internal/session"
	"github.com/dmitrymomot/backstage/internal/sessiontransport"
)

type payload struct {
	Username string `json:"username,omitempty"`
}

func newTransport(t *testing.T) *sessiontransport.Cookie[payload] {
	t.Helper()

	manager, err := session.NewManager(session.NewMemoryStore[payload](), time.Hour)
	require.NoError(t, err)

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	transport, err := sessiontransport.NewCookie(manager, cookies, "session")
	require.NoError(t, err)
	return transport
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("assigns and echoes an id", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Use(middleware.RequestID[*router.Context]())
		r.Get("/", func(ctx *router.Context) handler.Response {
			assert.NotEmpty(t, middleware.GetRequestID(ctx))
			return response.JSON(nil)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("reuses the upstream id", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Use(middleware.RequestID[*router.Context]())
		r.Get("/", func(ctx *router.Context) handler.Response { return response.JSON(nil) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "upstream-id")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "upstream-id", w.Header().Get(middleware.RequestIDHeader))
	})
}

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("anonymous session is issued with a cookie", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Use(middleware.Session[*router.Context](newTransport(t)))
		r.Get("/", func(ctx *router.Context) handler.Response {
			s := middleware.MustGetSession[payload](ctx)
			assert.False(t, s.IsAuthenticated())
			return response.JSON(nil)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "session", cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("session survives across requests", func(t *testing.T) {
		t.Parallel()

		transport := newTransport(t)
		var firstID, secondID string

		r := router.New[*router.Context]()
		r.Use(middleware.Session[*router.Context](transport))
		r.Get("/first", func(ctx *router.Context) handler.Response {
			firstID = middleware.MustGetSession[payload](ctx).ID.String()
			return response.JSON(nil)
		})
		r.Get("/second", func(ctx *router.Context) handler.Response {
			secondID = middleware.MustGetSession[payload](ctx).ID.String()
			return response.JSON(nil)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/first", nil))

		req := httptest.NewRequest(http.MethodGet, "/second", nil)
		for _, c := range w.Result().Cookies() {
			req.AddCookie(c)
		}
		r.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, firstID, secondID)
	})

	t.Run("require auth rejects anonymous requests", func(t *testing.T) {
		t.Parallel()

		var handlerRan bool
		r := router.New[*router.Context]()
		r.Use(middleware.RequireAuth[*router.Context](newTransport(t)))
		r.Get("/private", func(ctx *router.Context) handler.Response {
			handlerRan = true
			return response.JSON(nil)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, handlerRan, "the handler must not run for anonymous requests")
	})

	t.Run("authenticate rotates the token and passes the gate", func(t *testing.T) {
		t.Parallel()

		transport := newTransport(t)
		userID := uuid.New()

		r := router.New[*router.Context]()
		r.Group(func(g *router.Router[*router.Context]) {
			g.Use(middleware.Session[*router.Context](transport))
			g.Post("/login", func(ctx *router.Context) handler.Response {
				require.NoError(t, middleware.AuthenticateSession[payload](ctx, userID))
				s := middleware.MustGetSession[payload](ctx)
				s.Data.Username = "alice"
				middleware.SetSession(ctx, s)
				return response.JSON(nil)
			})
			g.Post("/logout", func(ctx *router.Context) handler.Response {
				require.NoError(t, middleware.LogoutSession[payload](ctx))
				return response.JSON(nil)
			})
		})
		r.Group(func(g *router.Router[*router.Context]) {
			g.Use(middleware.RequireAuth[*router.Context](transport))
			g.Get("/private", func(ctx *router.Context) handler.Response {
				s := middleware.MustGetSession[payload](ctx)
				assert.Equal(t, userID, s.UserID)
				assert.Equal(t, "alice", s.Data.Username)
				return response.JSON(nil)
			})
		})

		// First request starts anonymous and logs in.
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		loginCookies := w.Result().Cookies()

		// Login rotated the cookie; the private route must accept it.
		require.NotEmpty(t, loginCookies)
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		for _, c := range loginCookies {
			req.AddCookie(c)
		}
		w2 := httptest.NewRecorder()
		r.ServeHTTP(w2, req)
		assert.Equal(t, http.StatusOK, w2.Code)

		// Logout clears the session; the token stops working.
		reqOut := httptest.NewRequest(http.MethodPost, "/logout", nil)
		for _, c := range loginCookies {
			reqOut.AddCookie(c)
		}
		r.ServeHTTP(httptest.NewRecorder(), reqOut)

		req3 := httptest.NewRequest(http.MethodGet, "/private", nil)
		for _, c := range loginCookies {
			req3.AddCookie(c)
		}
		w3 := httptest.NewRecorder()
		r.ServeHTTP(w3, req3)
		assert.Equal(t, http.StatusUnauthorized, w3.Code)
	})
}

func TestLogging(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := router.New[*router.Context]()
	r.Use(middleware.Logging[*router.Context](log))
	r.Get("/", func(ctx *router.Context) handler.Response { return response.JSON(nil) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
