package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/permflow/engine/pkg/api/auth"
)

// AdminCredentials is the single bootstrap admin principal configured at
// 'accessreqd init' time (config.AdminConfig). Identity federation is a
// spec Non-goal; there is exactly one login-capable principal.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// AuthHandler issues bearer tokens for the bootstrap admin account.
type AuthHandler struct {
	creds   AdminCredentials
	tokens  *auth.Service
}

func NewAuthHandler(creds AdminCredentials, tokens *auth.Service) *AuthHandler {
	return &AuthHandler{creds: creds, tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Username != h.creds.Username || h.creds.PasswordHash == "" {
		Unauthorized(w, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.creds.PasswordHash), []byte(req.Password)); err != nil {
		Unauthorized(w, "invalid credentials")
		return
	}
	token, expiresAt, err := h.tokens.IssueToken(req.Username, "admin")
	if err != nil {
		InternalServerError(w, err.Error())
		return
	}
	WriteJSONOK(w, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
