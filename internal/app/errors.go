package app

import (
	"errors"

	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/response"
	"github.com/dmitrymomot/backstage/internal/speaker"
	"github.com/dmitrymomot/backstage/internal/upload"
	"github.com/dmitrymomot/backstage/internal/user"
)

// fail maps domain errors to wire errors. Anything unmapped propagates
// untouched and renders as a generic 500 with the cause logged, never leaked.
func (a *App) fail(err error) handler.Response {
	switch {
	case errors.Is(err, speaker.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return response.Error(response.ErrNotFound)
	case errors.Is(err, user.ErrInvalidCredentials):
		return response.Error(response.ErrUnauthorized.WithMessage("Invalid credentials"))
	case errors.Is(err, user.ErrInvalidUsername):
		return response.Error(response.ErrBadRequest.WithMessage("Invalid username"))
	case errors.Is(err, user.ErrUsernameTaken):
		return response.Error(response.ErrBadRequest.WithMessage("Username already taken"))
	case errors.Is(err, user.ErrPasswordTooShort):
		return response.Error(response.ErrBadRequest.WithMessage("Password must be at least 8 characters"))
	case errors.Is(err, user.ErrLastUser):
		return response.Error(response.ErrBadRequest.WithMessage("Cannot delete the last user"))
	case errors.Is(err, user.ErrSelfDelete):
		return response.Error(response.ErrBadRequest.WithMessage("Cannot delete own account"))
	case errors.Is(err, upload.ErrTooLarge):
		return response.Error(response.ErrRequestEntityTooLarge.WithMessage("File too large"))
	case errors.Is(err, upload.ErrUnsupportedType):
		return response.Error(response.ErrBadRequest.WithMessage("Unsupported file type"))
	default:
		return response.Error(err)
	}
}
