package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

type principalKey struct{}

// WithPrincipal attaches the authenticated caller to ctx.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}

// TokenFromRequest extracts the bearer token from the Authorization header.
func TokenFromRequest(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate resolves the caller from the bearer token. A token is only
// accepted when it is the one currently stored for the user, so logged out
// tokens are refused.
func authenticate(r *http.Request, redisClient redis.RedisClient, tokens *TokenManager) (models.Principal, string) {
	tokenStr, ok := TokenFromRequest(r)
	if !ok {
		return models.Principal{}, "authorization header missing or malformed"
	}

	claims, err := tokens.ValidateJWT(tokenStr)
	if err != nil {
		return models.Principal{}, "invalid token"
	}

	storedToken, err := redisClient.Get(r.Context(), redis.TokenKey(claims.UserID))
	if err != nil || storedToken != tokenStr {
		slog.Warn("invalid or revoked token", "user_id", claims.UserID, "error", err)
		return models.Principal{}, "invalid or revoked token"
	}
	return models.Principal{UserID: claims.UserID, Role: claims.Role}, ""
}

func AuthMiddleware(redisClient redis.RedisClient, tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, failure := authenticate(r, redisClient, tokens)
			if failure != "" {
				writeUnauthorized(w, failure)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// OptionalAuth attaches the caller when the request carries a valid token and
// otherwise serves the request anonymously.
func OptionalAuth(redisClient redis.RedisClient, tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, failure := authenticate(r, redisClient, tokens)
			if failure != "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			writeUnauthorized(w, "user not authenticated")
			return
		}
		if !p.IsAdmin() {
			writeJSON(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, msg)
}

func writeJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
