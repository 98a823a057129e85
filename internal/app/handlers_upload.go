package app

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/backstage/internal/handler"
	"github.com/dmitrymomot/backstage/internal/response"
	"github.com/dmitrymomot/backstage/internal/upload"
)

type uploadResponse struct {
	URL string `json:"url"`
}

func (a *App) uploadFile(ctx *Context) handler.Response {
	r := ctx.Request()
	r.Body = http.MaxBytesReader(ctx.ResponseWriter(), r.Body, upload.MaxFileSize+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return a.fail(upload.ErrTooLarge)
		}
		return response.Error(response.ErrBadRequest.WithMessage("Missing file field"))
	}
	defer file.Close()

	url, err := a.uploads.Save(file, header)
	if err != nil {
		return a.fail(err)
	}
	return response.JSONWithStatus(uploadResponse{URL: url}, http.StatusCreated)
}
