package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Middleware extracts the caller's identity from a bearer token issued by
// the external auth service. Token issuance, workspace membership, and role
// checks all live there; this layer only reads the workspace and user
// claims it needs to scope queries and attribute comments.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			workspaceID, _ := claims["wid"].(string)
			if workspaceID == "" {
				http.Error(w, "Token missing workspace claim", http.StatusUnauthorized)
				return
			}
			userID, _ := claims["sub"].(string)

			ctx := WithIdentity(r.Context(), workspaceID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
