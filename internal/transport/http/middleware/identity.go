package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iammohit64/wrap-up/internal/httputil"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// IdentityKey is the context key for the caller's identity: a wallet
	// address or an ephemeral anon_ session id.
	IdentityKey contextKey = "identity"
)

func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if cookie, err := r.Cookie("session_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

func identityFromToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	identity, ok := claims["sub"].(string)
	if !ok || identity == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return identity, nil
}

// IdentityMiddleware validates the session token and puts the caller's
// identity on the context. Both wallet sessions and anonymous sessions pass
// through here; handlers never see the difference.
func IdentityMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing session token")
				return
			}

			identity, err := identityFromToken(tokenString, secret)
			if err != nil {
				httputil.WriteUnauthorized(w, "Invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalIdentityMiddleware attaches the identity when a valid token is
// present and passes the request through untouched otherwise.
func OptionalIdentityMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString != "" {
				if identity, err := identityFromToken(tokenString, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), IdentityKey, identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentityFromContext extracts the caller identity from the request
// context. Returns the identity and true if found.
func GetIdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(IdentityKey).(string)
	return identity, ok
}
