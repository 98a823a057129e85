package user

import (
	"log/slog"

	"github.com/dmitrymomot/backstage/internal/logger"
)

// Seed creates the initial admin account when the store has no users.
// Existing stores are left untouched.
func Seed(s *Store, username, password string, log *slog.Logger) error {
	users, err := s.docs.Get()
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	created, err := s.Create(username, password, "system")
	if err != nil {
		return err
	}

	if log != nil {
		log.Info("seeded initial admin user",
			logger.Component("user"),
			slog.String("username", created.Username),
		)
	}
	return nil
}
