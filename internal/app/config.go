package app

import "time"

// Config holds application settings, populated from environment variables.
type Config struct {
	DataDir   string `env:"DATA_DIR" envDefault:"./data"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"./data/uploads"`

	// SessionSecrets sign session cookies; the first entry signs, all
	// verify. Each must be at least 32 characters.
	SessionSecrets []string      `env:"SESSION_SECRET" envSeparator:","`
	SessionCookie  string        `env:"SESSION_COOKIE" envDefault:"session"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// RedisURL switches session storage from in-memory to Redis when set.
	RedisURL string `env:"REDIS_URL"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"changeme-please"`
}

// InsecureDefaults reports whether the config still carries placeholder
// credentials or secrets. Logged as a warning at startup.
func (c Config) InsecureDefaults() bool {
	return c.AdminPassword == "changeme-please" || len(c.SessionSecrets) == 0
}
