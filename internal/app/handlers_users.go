package app

import (
	"net/http"

	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/response"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (a *App) listUsers(ctx *Context) handler.Response {
	users, err := a.users.List()
	if err != nil {
		return a.fail(err)
	}
	return response.JSON(users)
}

func (a *App) createUser(ctx *Context) handler.Response {
	var req createUserRequest
	if err := ctx.Bind(&req); err != nil {
		return response.Error(err)
	}

	created, err := a.users.Create(req.Username, req.Password, ctx.Username())
	if err != nil {
		return a.fail(err)
	}
	return response.JSONWithStatus(created, http.StatusCreated)
}

func (a *App) deleteUser(ctx *Context) handler.Response {
	if err := a.users.Delete(ctx.Param("username"), ctx.Username()); err != nil {
		return a.fail(err)
	}
	return response.JSONWithStatus(nil, http.StatusNoContent)
}

func (a *App) resetPassword(ctx *Context) handler.Response {
	var req resetPasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return response.Error(err)
	}

	if err := a.users.ResetPassword(ctx.Param("username"), req.NewPassword, ctx.Username()); err != nil {
		return a.fail(err)
	}
	return response.JSONWithStatus(nil, http.StatusNoContent)
}
