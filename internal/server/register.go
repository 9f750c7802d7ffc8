package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest represents the JSON payload for account registration.
type RegisterRequest struct {
	Nom      string `json:"nom"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// normalizeEmail lowercases and trims an email address. Accounts are stored
// and looked up under the normalized form, which is what makes the
// uniqueness check case-insensitive.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// hashPassword generates a bcrypt hash of the password.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a password with its hash.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RegisterHandler handles POST /api/auth/register.
// Rejects before any side effect when a field is missing or the email is
// already taken; otherwise persists exactly one account.
func (cfg Config) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Nom = strings.TrimSpace(req.Nom)
	req.Email = normalizeEmail(req.Email)

	if req.Nom == "" || req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "nom, email and password are required")
		return
	}

	// Pre-check keeps the common duplicate case off the unique constraint.
	var exists bool
	err := cfg.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)",
		req.Email,
	).Scan(&exists)
	if err != nil {
		Error("register duplicate check failed", nil, err)
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}
	if exists {
		respondMessage(w, http.StatusBadRequest, "email already registered")
		return
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		Error("register hash failed", nil, err)
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	userID := uuid.New()
	now := time.Now().UTC()
	_, err = cfg.DB.Exec(`
		INSERT INTO users (id, nom, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, userID, req.Nom, req.Email, passwordHash, now)
	if err != nil {
		Error("register insert failed", nil, err)
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	log.Printf("register: created account %s", userID)

	// No sensitive data is echoed back.
	respondMessage(w, http.StatusCreated, "account created")
}
