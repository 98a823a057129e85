package app

import (
	"net/http"

	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/middleware"
	"github.com/dmitrymomot/backstage/internal/response"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type authStatus struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

func (a *App) login(ctx *Context) handler.Response {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return response.Error(err)
	}

	u, err := a.users.Verify(req.Username, req.Password)
	if err != nil {
		return a.fail(err)
	}

	if err := middleware.AuthenticateSession[SessionData](ctx, u.ID); err != nil {
		return a.fail(err)
	}

	s := ctx.Session()
	s.Data.Username = u.Username
	middleware.SetSession(ctx, s)

	return response.JSON(u.Public())
}

func (a *App) logout(ctx *Context) handler.Response {
	if err := middleware.LogoutSession[SessionData](ctx); err != nil {
		return a.fail(err)
	}
	return response.JSONWithStatus(nil, http.StatusNoContent)
}

func (a *App) checkAuth(ctx *Context) handler.Response {
	s := ctx.Session()
	return response.JSON(authStatus{
		Authenticated: s.IsAuthenticated(),
		Username:      s.Data.Username,
	})
}

func (a *App) changePassword(ctx *Context) handler.Response {
	var req changePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return response.Error(err)
	}

	username := ctx.Username()
	if username == "" {
		return response.Error(response.ErrUnauthorized)
	}

	if err := a.users.ChangePassword(username, req.CurrentPassword, req.NewPassword); err != nil {
		return a.fail(err)
	}
	return response.JSONWithStatus(nil, http.StatusNoContent)
}
