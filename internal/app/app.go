// Package app wires the stores, session machinery, and HTTP routes into one
// application.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/backstage/internal/content"
	"github.com/dmitrymomot/backstage/internal/cookie"
	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/jsonstore"
	"github.com/dmitrymomot/backstage/internal/logger"
	"github.com/dmitrymomot/backstage/internal/middleware"
	"github.com/dmitrymomot/backstage/internal/router"
	"github.com/dmitrymomot/backstage/internal/session"
	"github.com/dmitrymomot/backstage/internal/sessiontransport"
	"github.com/dmitrymomot/backstage/internal/speaker"
	"github.com/dmitrymomot/backstage/internal/upload"
	"github.com/dmitrymomot/backstage/internal/user"
)

// App holds the wired application. Router serves the whole API.
type App struct {
	Router *router.Router[*Context]

	speakers *speaker.Store
	content  *content.Store
	users    *user.Store
	uploads  *upload.LocalStorage
	sessions *sessiontransport.Cookie[SessionData]
	log      *slog.Logger
}

// New builds the application: data files are seeded, stores and session
// machinery wired, and routes registered.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	speakersPath := filepath.Join(cfg.DataDir, "speakers.json")
	contentPath := filepath.Join(cfg.DataDir, "content.json")
	usersPath := filepath.Join(cfg.DataDir, "users.json")

	if err := jsonstore.Ensure(speakersPath, []speaker.Speaker{}); err != nil {
		return nil, err
	}
	if err := jsonstore.Ensure(contentPath, content.Seed()); err != nil {
		return nil, err
	}
	if err := jsonstore.Ensure(usersPath, []user.User{}); err != nil {
		return nil, err
	}

	users := user.NewStore(jsonstore.NewCached[[]user.User](usersPath))
	if err := user.Seed(users, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		return nil, fmt.Errorf("app: seed users: %w", err)
	}

	secrets := cfg.SessionSecrets
	if len(secrets) == 0 {
		// Sessions signed with an ephemeral secret die on restart.
		log.Warn("SESSION_SECRET not set, using an ephemeral secret", logger.Component("app"))
		secrets = []string{randomSecret()}
	}

	cookies, err := cookie.New(secrets, cookie.WithSecure(cfg.CookieSecure))
	if err != nil {
		return nil, fmt.Errorf("app: cookie manager: %w", err)
	}

	store, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	manager, err := session.NewManager[SessionData](store, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("app: session manager: %w", err)
	}

	transport, err := sessiontransport.NewCookie(manager, cookies, cfg.SessionCookie)
	if err != nil {
		return nil, fmt.Errorf("app: session transport: %w", err)
	}

	uploads, err := upload.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		speakers: speaker.NewStore(jsonstore.NewCached[[]speaker.Speaker](speakersPath)),
		content:  content.NewStore(jsonstore.NewCached[content.Document](contentPath)),
		users:    users,
		uploads:  uploads,
		sessions: transport,
		log:      log,
	}
	a.Router = a.routes()
	return a, nil
}

// routes builds the route table. Reads are public; everything that mutates
// state sits behind the authentication gate.
func (a *App) routes() *router.Router[*Context] {
	r := router.New(
		router.WithContextFactory(NewContext),
		router.WithLogger[*Context](a.log),
		router.WithMiddleware(
			middleware.RequestID[*Context](),
			middleware.Logging[*Context](a.log),
		),
	)

	withSession := middleware.Session[*Context](a.sessions)
	authRequired := middleware.RequireAuth[*Context](a.sessions)

	r.Group(func(g *router.Router[*Context]) {
		g.Use(withSession)

		g.Get("/api/speakers", a.listSpeakers)
		g.Get("/api/speakers/{id}", a.getSpeaker)
		g.Get("/api/content", a.getContent)

		g.Post("/api/auth/login", a.login)
		g.Post("/api/auth/logout", a.logout)
		g.Get("/api/auth/check", a.checkAuth)
	})

	r.Group(func(g *router.Router[*Context]) {
		g.Use(authRequired)

		g.Post("/api/speakers", a.createSpeaker)
		g.Put("/api/speakers/{id}", a.updateSpeaker)
		g.Delete("/api/speakers/{id}", a.deleteSpeaker)

		g.Put("/api/content", a.replaceContent)
		g.Post("/api/upload", a.uploadFile)
		g.Post("/api/auth/change-password", a.changePassword)

		g.Get("/api/users", a.listUsers)
		g.Post("/api/users", a.createUser)
		g.Delete("/api/users/{username}", a.deleteUser)
		g.Post("/api/users/{username}/reset-password", a.resetPassword)
	})

	r.Mount("GET "+upload.URLPrefix, http.StripPrefix(upload.URLPrefix, noListing(http.FileServer(http.Dir(a.uploads.Dir())))))

	return r
}

// noListing hides directory indexes from the static file server.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newSessionStore(ctx context.Context, cfg Config, log *slog.Logger) (session.Store[SessionData], error) {
	if cfg.RedisURL == "" {
		return session.NewMemoryStore[SessionData](), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("app: parse REDIS_URL: %w", err)
	}

	store, err := session.NewRedisStore[SessionData](ctx, redis.NewClient(opts))
	if err != nil {
		return nil, err
	}

	log.Info("using redis session store", logger.Component("app"))
	return store, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("app: random secret: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

var _ handler.Context = (*Context)(nil)
