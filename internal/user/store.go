package user

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/backstage/internal/jsonstore"
)

const minPasswordLength = 8

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// dummyHash is compared against when the username is unknown, so lookup
// failures take as long as a real bcrypt mismatch.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("user: dummy hash: %v", err))
	}
	return h
}()

// Store manages users persisted in a cached JSON document.
type Store struct {
	docs *jsonstore.Cached[[]User]
}

// NewStore creates a store over the given users document.
func NewStore(docs *jsonstore.Cached[[]User]) *Store {
	return &Store{docs: docs}
}

// Verify checks a username/password pair. Unknown usernames and wrong
// passwords return the identical ErrInvalidCredentials; a dummy bcrypt
// comparison runs for unknown usernames so the two failures also take the
// same time. Success stamps LastLogin.
func (s *Store) Verify(username, password string) (User, error) {
	users, err := s.docs.Get()
	if err != nil {
		return User{}, err
	}

	idx := -1
	for i, u := range users {
		if u.Username == username {
			idx = i
			break
		}
	}

	if idx < 0 {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(users[idx].PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	var verified User
	_, err = s.docs.Update(func(users []User) ([]User, error) {
		for i := range users {
			if users[i].Username == username {
				now := time.Now().UTC()
				users[i].LastLogin = &now
				verified = users[i]
				return users, nil
			}
		}
		return nil, ErrInvalidCredentials
	})
	if err != nil {
		return User{}, err
	}
	return verified, nil
}

// Create adds a user. The username must match [A-Za-z0-9_-]+ and be unused;
// the password must have at least 8 characters.
func (s *Store) Create(username, password, createdBy string) (User, error) {
	if !usernameRe.MatchString(username) {
		return User{}, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("user: hash password: %w", err)
	}

	created := User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    createdBy,
	}

	_, err = s.docs.Update(func(users []User) ([]User, error) {
		for _, u := range users {
			if u.Username == username {
				return nil, ErrUsernameTaken
			}
		}
		return append(users, created), nil
	})
	if err != nil {
		return User{}, err
	}
	return created.Public(), nil
}

// ChangePassword replaces the user's password after verifying the current
// one. Failures to verify report ErrInvalidCredentials.
func (s *Store) ChangePassword(username, current, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	if _, err := s.Verify(username, current); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("user: hash password: %w", err)
	}

	_, err = s.docs.Update(func(users []User) ([]User, error) {
		for i := range users {
			if users[i].Username == username {
				now := time.Now().UTC()
				users[i].PasswordHash = string(hash)
				users[i].PasswordChangedAt = &now
				users[i].PasswordResetBy = ""
				return users, nil
			}
		}
		return nil, ErrNotFound
	})
	return err
}

// ResetPassword sets a new password without knowing the current one and
// records who performed the reset. Management operation, caller is expected
// to be authenticated.
func (s *Store) ResetPassword(username, newPassword, resetBy string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("user: hash password: %w", err)
	}

	_, err = s.docs.Update(func(users []User) ([]User, error) {
		for i := range users {
			if users[i].Username == username {
				now := time.Now().UTC()
				users[i].PasswordHash = string(hash)
				users[i].PasswordChangedAt = &now
				users[i].PasswordResetBy = resetBy
				return users, nil
			}
		}
		return nil, ErrNotFound
	})
	return err
}

// Delete removes a user. The last remaining user cannot be deleted, and a
// user cannot delete their own account.
func (s *Store) Delete(username, requestedBy string) error {
	if username == requestedBy {
		return ErrSelfDelete
	}

	_, err := s.docs.Update(func(users []User) ([]User, error) {
		idx := -1
		for i, u := range users {
			if u.Username == username {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrNotFound
		}
		if len(users) == 1 {
			return nil, ErrLastUser
		}

		out := make([]User, 0, len(users)-1)
		out = append(out, users[:idx]...)
		return append(out, users[idx+1:]...), nil
	})
	return err
}

// List returns all users with password hashes stripped.
func (s *Store) List() ([]User, error) {
	users, err := s.docs.Get()
	if err != nil {
		return nil, err
	}

	out := make([]User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out, nil
}

// ByID returns the user with the given ID, hash stripped.
func (s *Store) ByID(id uuid.UUID) (User, error) {
	users, err := s.docs.Get()
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u.Public(), nil
		}
	}
	return User{}, ErrNotFound
}
