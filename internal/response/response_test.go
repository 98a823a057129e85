package response_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/backstage/internal/response"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("encodes with 200", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, response.JSON(map[string]string{"ok": "yes"})(w, r))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"ok":"yes"}`, w.Body.String())
	})

	t.Run("custom status", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		require.NoError(t, response.JSONWithStatus(map[string]int{"id": 1}, http.StatusCreated)(w, r))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("204 has no body", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/", nil)
		require.NoError(t, response.JSONWithStatus(nil, http.StatusNoContent)(w, r))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := response.ErrNotFound
	assert.Equal(t, http.StatusNotFound, err.StatusCode())
	assert.Equal(t, "Not Found", err.Error())

	custom := response.ErrBadRequest.WithMessage("bad input")
	assert.Equal(t, "bad input", custom.Error())
	assert.Equal(t, http.StatusBadRequest, custom.StatusCode())
	// WithMessage must not mutate the shared predefined error.
	assert.Equal(t, "Bad Request", response.ErrBadRequest.Error())
}

func TestError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	err := response.Error(response.ErrForbidden)(w, r)
	assert.Equal(t, response.ErrForbidden, err)
	assert.Empty(t, w.Body.String(), "Error must not write, only propagate")
}
