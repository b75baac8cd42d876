package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permflow/engine/pkg/catalogue/models"
)

func TestWriteProblem(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteProblem(rec, http.StatusTeapot, "I'm a teapot", "short and stout")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "I'm a teapot", p.Title)
	assert.Equal(t, http.StatusTeapot, p.Status)
	assert.Equal(t, "short and stout", p.Detail)
}

func TestConvenienceWriters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
		title  string
	}{
		{"BadRequest", BadRequest, http.StatusBadRequest, "Bad Request"},
		{"Unauthorized", Unauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"Forbidden", Forbidden, http.StatusForbidden, "Forbidden"},
		{"NotFound", NotFound, http.StatusNotFound, "Not Found"},
		{"Conflict", Conflict, http.StatusConflict, "Conflict"},
		{"InternalServerError", InternalServerError, http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.write(rec, "detail")

			var p Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.title, p.Title)
		})
	}
}

func TestWriteError_ClassifiesSentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"request not found", models.ErrRequestNotFound, http.StatusNotFound, "Not Found"},
		{"task not found", models.ErrTaskNotFound, http.StatusNotFound, "Not Found"},
		{"forbidden", models.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"duplicate user", models.ErrDuplicateUser, http.StatusConflict, "Conflict"},
		{"request conflict", models.ErrRequestConflict, http.StatusConflict, "Conflict"},
		{"invalid state", models.ErrRequestInvalidState, http.StatusUnprocessableEntity, "Unprocessable Entity"},
		{"task not cancelable", models.ErrTaskNotCancelable, http.StatusUnprocessableEntity, "Unprocessable Entity"},
		{"wrapped not found", fmtWrap(models.ErrFolderNotFound), http.StatusNotFound, "Not Found"},
		{"unrecognized error", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			var p Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.title, p.Title)
		})
	}
}

func fmtWrap(err error) error {
	return errors.Join(err)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONCreated(rec, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body["id"])
}

func TestWriteNoContent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteNoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
