package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// invalidCredentials is returned verbatim whether the email is unknown or
// the password is wrong, so the response never reveals which one it was.
const invalidCredentials = "invalid email or password"

// LoginHandler handles POST /api/auth/login. On success it issues a signed
// token embedding the account id and email. No persistent side effect.
func (cfg Config) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		userID       string
		passwordHash string
	)
	err := cfg.DB.QueryRow(
		"SELECT id, password_hash FROM users WHERE email = $1",
		normalizeEmail(req.Email),
	).Scan(&userID, &passwordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			respondMessage(w, http.StatusBadRequest, invalidCredentials)
			return
		}
		Error("login query failed", nil, err)
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	if !verifyPassword(req.Password, passwordHash) {
		respondMessage(w, http.StatusBadRequest, invalidCredentials)
		return
	}

	token, err := cfg.Auth.GenerateToken(userID, normalizeEmail(req.Email))
	if err != nil {
		Error("login token sign failed", nil, err)
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		Message: "login successful",
		Token:   token,
	})
}
