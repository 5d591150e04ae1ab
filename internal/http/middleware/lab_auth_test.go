package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedLabToken(t *testing.T, secret string, labID int64) string {
	t.Helper()
	claims := LabClaims{
		LabID: labID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestLabJWTMissingSecret(t *testing.T) {
	mw := LabJWT("")
	req := httptest.NewRequest(http.MethodGet, "/portal/bookings", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLabJWTMissingHeader(t *testing.T) {
	mw := LabJWT("secret")
	req := httptest.NewRequest(http.MethodGet, "/portal/bookings", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLabJWTWrongSecret(t *testing.T) {
	mw := LabJWT("secret")
	req := httptest.NewRequest(http.MethodGet, "/portal/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+signedLabToken(t, "other", 3))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLabJWTMissingLabID(t *testing.T) {
	mw := LabJWT("secret")
	req := httptest.NewRequest(http.MethodGet, "/portal/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+signedLabToken(t, "secret", 0))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLabJWTValidTokenExposesLabID(t *testing.T) {
	mw := LabJWT("secret")
	req := httptest.NewRequest(http.MethodGet, "/portal/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+signedLabToken(t, "secret", 7))
	rec := httptest.NewRecorder()

	var gotID int64
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := LabIDFromContext(r.Context())
		if !ok {
			t.Fatal("lab id missing from context")
		}
		gotID = id
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if gotID != 7 {
		t.Fatalf("expected lab id 7, got %d", gotID)
	}
}
