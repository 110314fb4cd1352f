package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pinclub/pin-engine/models"
)

type contextKey string

const claimsContextKey contextKey = "claims"

const (
	jwtClaimPlayerID = "player_id"
	jwtClaimRole     = "role"
)

// Authenticator verifies the Bearer token and stores its claims in the
// request context. Requests without a valid token are rejected.
func Authenticator(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing or malformed authorization header")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return jwtSecret, nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated requests whose token does not carry the
// admin role. Must run after Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, err := GetPlayerRoleFromContext(r.Context())
		if err != nil || role != models.RoleAdmin {
			forbidden(w, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetPlayerIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("player claims not found in context")
	}

	idClaim, ok := claims[jwtClaimPlayerID]
	if !ok {
		return 0, fmt.Errorf("missing %q claim in token", jwtClaimPlayerID)
	}
	idFloat, ok := idClaim.(float64)
	if !ok || idFloat != float64(int(idFloat)) {
		return 0, fmt.Errorf("invalid %q claim in token", jwtClaimPlayerID)
	}

	id := int(idFloat)
	if id <= 0 {
		return 0, fmt.Errorf("invalid player ID in %q claim: %d", jwtClaimPlayerID, id)
	}
	return id, nil
}

func GetPlayerRoleFromContext(ctx context.Context) (models.PlayerRole, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("player claims not found in context")
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing %q claim in token", jwtClaimRole)
	}
	role, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid %q claim in token", jwtClaimRole)
	}
	return models.PlayerRole(role), nil
}

func unauthorized(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusUnauthorized)
}

func forbidden(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusForbidden)
}
