// Package handlers implements the HTTP handlers behind pkg/api's router.
package handlers

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 problem-details response.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

const ContentTypeProblemJSON = "application/problem+json"

func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func BadRequest(w http.ResponseWriter, detail string) { WriteProblem(w, http.StatusBadRequest, "Bad Request", detail) }
func Unauthorized(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusUnauthorized, "Unauthorized", detail)
}
func Forbidden(w http.ResponseWriter, detail string) { WriteProblem(w, http.StatusForbidden, "Forbidden", detail) }
func NotFound(w http.ResponseWriter, detail string)   { WriteProblem(w, http.StatusNotFound, "Not Found", detail) }
func Conflict(w http.ResponseWriter, detail string)   { WriteProblem(w, http.StatusConflict, "Conflict", detail) }
func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// WriteError maps a domain error to the appropriate problem response using
// the models package's sentinel errors (see classify); any other error is
// reported as a 500.
func WriteError(w http.ResponseWriter, err error) {
	status, title := classify(err)
	WriteProblem(w, status, title, err.Error())
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteJSONOK(w http.ResponseWriter, data any)      { WriteJSON(w, http.StatusOK, data) }
func WriteJSONCreated(w http.ResponseWriter, data any) { WriteJSON(w, http.StatusCreated, data) }
func WriteNoContent(w http.ResponseWriter)             { w.WriteHeader(http.StatusNoContent) }
