package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const labClaimsKey contextKey = "labClaims"

// LabClaims are the JWT claims issued to lab portal users.
type LabClaims struct {
	LabID int64 `json:"lab_id"`
	jwt.RegisteredClaims
}

// LabJWT enforces an HMAC-signed JWT for lab portal endpoints. The
// token must carry a positive lab_id claim.
func LabJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "portal auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := &LabClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.LabID <= 0 {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), labClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LabIDFromContext returns the authenticated lab's ID if present.
func LabIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := ctx.Value(labClaimsKey).(*LabClaims)
	if !ok {
		return 0, false
	}
	return claims.LabID, true
}
