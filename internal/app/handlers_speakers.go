package app

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/response"
	"github.com/dmitrymomot/backstage/internal/speaker"
)

func speakerID(ctx *Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, response.ErrBadRequest.WithMessage("Invalid speaker id")
	}
	return id, nil
}

func (a *App) listSpeakers(ctx *Context) handler.Response {
	speakers, err := a.speakers.List()
	if err != nil {
		return a.fail(err)
	}
	return response.JSON(speakers)
}

func (a *App) getSpeaker(ctx *Context) handler.Response {
	id, err := speakerID(ctx)
	if err != nil {
		return response.Error(err)
	}

	sp, err := a.speakers.Get(id)
	if err != nil {
		return a.fail(err)
	}
	return response.JSON(sp)
}

func (a *App) createSpeaker(ctx *Context) handler.Response {
	var fields speaker.Speaker
	if err := ctx.Bind(&fields); err != nil {
		return response.Error(err)
	}

	created, err := a.speakers.Create(fields)
	if err != nil {
		return a.fail(err)
	}
	return response.JSONWithStatus(created, http.StatusCreated)
}

func (a *App) updateSpeaker(ctx *Context) handler.Response {
	id, err := speakerID(ctx)
	if err != nil {
		return response.Error(err)
	}

	var fields speaker.Speaker
	if err := ctx.Bind(&fields); err != nil {
		return response.Error(err)
	}

	updated, err := a.speakers.Update(id, fields)
	if err != nil {
		return a.fail(err)
	}
	return response.JSON(updated)
}

func (a *App) deleteSpeaker(ctx *Context) handler.Response {
	id, err := speakerID(ctx)
	if err != nil {
		return response.Error(err)
	}

	if err := a.speakers.Delete(id); err != nil {
		return a.fail(err)
	}
	return response.JSONWithStatus(nil, http.StatusNoContent)
}
