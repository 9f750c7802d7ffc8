// auth.go - Bearer-token authentication for the API.
//
// Issues HS256 JWTs carrying the account id and email, and gates the
// protected endpoints on a valid Authorization header.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig holds the signing secret and token lifetime used by the
// login handler and the auth middleware. Unit tests construct this directly.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Claims is the signed claim set embedded in every issued token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

var errInvalidToken = errors.New("invalid token")

const claimsKey ctxKey = "auth_claims"

func (a AuthConfig) ttl() time.Duration {
	if a.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return a.TokenTTL
}

func (a AuthConfig) secretBytes() []byte {
	return []byte(a.JWTSecret)
}

// GenerateToken mints a signed token for the given account.
func (a AuthConfig) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl())),
		},
		UserID: userID,
		Email:  email,
	})
	return token.SignedString(a.secretBytes())
}

// VerifyToken checks signature and expiry and returns the decoded claims.
// All failure modes collapse into errInvalidToken; callers must not
// distinguish reasons to the client.
func (a AuthConfig) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secretBytes(), nil
	})
	if err != nil {
		return nil, errInvalidToken
	}
	if !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimPrefix(h, "Bearer ")
	if tok == "" {
		return "", false
	}
	return tok, true
}

// requireAuth rejects requests without a valid bearer token before any other
// processing. On success the decoded claims are attached to the request
// context; the account is not re-checked against the store.
func (a AuthConfig) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := bearerToken(r)
		if !ok {
			respondMessage(w, http.StatusUnauthorized, "missing token")
			return
		}
		claims, err := a.VerifyToken(tok)
		if err != nil {
			respondMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the verified claims attached by requireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}
