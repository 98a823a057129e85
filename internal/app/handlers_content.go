package app

import (
	"github.com/dmitrymomot/backstage/internal/content"
	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/response"
)

func (a *App) getContent(ctx *Context) handler.Response {
	doc, err := a.content.Get()
	if err != nil {
		return a.fail(err)
	}
	return response.JSON(doc)
}

func (a *App) replaceContent(ctx *Context) handler.Response {
	var doc content.Document
	if err := ctx.Bind(&doc); err != nil {
		return response.Error(err)
	}

	if err := a.content.Replace(doc); err != nil {
		return a.fail(err)
	}
	return response.JSON(doc)
}
