package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"invest-retro/auth"
	"invest-retro/database"
	"invest-retro/database/users"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleRegister creates a new user account
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if n := utf8.RuneCountInString(req.Username); n < 3 || n > 50 {
		respondWithError(w, http.StatusBadRequest, "username must be between 3 and 50 characters", nil)
		return
	}
	if utf8.RuneCountInString(req.Password) < 8 {
		respondWithError(w, http.StatusBadRequest, "password must be at least 8 characters", nil)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to create account", err)
		return
	}

	user := &database.User{
		Username:       req.Username,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			respondWithError(w, http.StatusConflict, "username already registered", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// handleLogin verifies credentials and issues a bearer session token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := s.users.GetByUsername(req.Username)
	if err != nil || !user.IsActive || !auth.CheckPassword(user.HashedPassword, req.Password) {
		// Same message for unknown user and wrong password
		respondWithError(w, http.StatusUnauthorized, "incorrect username or password", nil)
		return
	}

	token, err := s.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleLogout revokes the caller's session token
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	if err := s.sessions.Revoke(r.Context(), token); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to revoke session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
