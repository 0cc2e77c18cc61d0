package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====

// AuthManager validates the platform-issued user tokens that accompany
// payment requests. Tokens are HS256 with the user id in the subject claim.
type AuthManager struct {
	secret []byte
}

func NewAuthManager(secret string) *AuthManager {
	return &AuthManager{secret: []byte(secret)}
}

// Enabled reports whether token verification is configured at all. With no
// secret the guard passes requests through (dev setups only).
func (a *AuthManager) Enabled() bool { return len(a.secret) > 0 }

type userClaims struct {
	jwt.RegisteredClaims
}

// Mint issues a token for a user id; used by tests and local tooling.
func (a *AuthManager) Mint(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := userClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Verify parses a bearer token and returns the subject (user id).
func (a *AuthManager) Verify(tokenString string) (string, error) {
	claims := &userClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

type authCtxKey string

const ctxAuthSubject authCtxKey = "auth_subject"

// AuthSubject returns the verified user id from the request context, if any.
func AuthSubject(ctx context.Context) string {
	if v := ctx.Value(ctxAuthSubject); v != nil {
		return v.(string)
	}
	return ""
}

// RequireUser is the bearer-token guard for payment routes.
func RequireUser(a *AuthManager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
				return
			}

			subject, err := a.Verify(tokenParts[1])
			if err != nil {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ctxAuthSubject, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
