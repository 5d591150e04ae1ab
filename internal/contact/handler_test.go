package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/labease/labease-platform/internal/http/middleware"
	"github.com/labease/labease-platform/pkg/logging"
)

const portalSecret = "portal-secret"

func newRouter(t *testing.T) (chi.Router, *recordingSender) {
	t.Helper()
	svc, _, sender := newFixture(t)
	h := NewHandler(svc, logging.NewWithWriter("error", io.Discard))

	r := chi.NewRouter()
	r.Post("/api/contact", h.Submit)
	r.Route("/portal", func(r chi.Router) {
		r.Use(middleware.LabJWT(portalSecret))
		r.Get("/messages", h.ListForLab)
	})
	return r, sender
}

func portalToken(t *testing.T, labID int64) string {
	t.Helper()
	claims := middleware.LabClaims{
		LabID: labID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(portalSecret))
	require.NoError(t, err)
	return token
}

func TestSubmitEndpoint(t *testing.T) {
	r, sender := newRouter(t)

	body, err := json.Marshal(SubmitRequest{
		Name:    "John Smith",
		Email:   "john@gmail.com",
		Message: "Do you do home visits?",
		LabID:   func() *int64 { id := int64(1); return &id }(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, sender.sent, 1)
}

func TestSubmitValidation(t *testing.T) {
	r, _ := newRouter(t)

	body := []byte(`{"name":"J","email":"not-an-email","message":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitUnknownLabIs404(t *testing.T) {
	r, _ := newRouter(t)

	body := []byte(`{"name":"John Smith","email":"john@gmail.com","message":"hi","lab_id":99}`)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortalMessagesRequireJWT(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/portal/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPortalMessagesScopedToLab(t *testing.T) {
	svc, repo, _ := newFixture(t)
	h := NewHandler(svc, logging.NewWithWriter("error", io.Discard))
	r := chi.NewRouter()
	r.Route("/portal", func(r chi.Router) {
		r.Use(middleware.LabJWT(portalSecret))
		r.Get("/messages", h.ListForLab)
	})

	labID := int64(1)
	require.NoError(t, repo.Create(context.Background(), &Message{
		Name: "John Smith", Email: "john@gmail.com", Body: "hi", LabID: &labID,
	}))
	require.NoError(t, repo.Create(context.Background(), &Message{
		Name: "Jane Doe", Email: "jane@example.com", Body: "admin only", RecipientAdmin: true,
	}))

	req := httptest.NewRequest(http.MethodGet, "/portal/messages", nil)
	req.Header.Set("Authorization", "Bearer "+portalToken(t, labID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Messages []Message `json:"messages"`
		Count    int       `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "John Smith", resp.Messages[0].Name)
}

func TestPortalDeleteScopedToLab(t *testing.T) {
	svc, repo, _ := newFixture(t)
	h := NewHandler(svc, logging.NewWithWriter("error", io.Discard))
	r := chi.NewRouter()
	r.Route("/portal", func(r chi.Router) {
		r.Use(middleware.LabJWT(portalSecret))
		r.Delete("/messages/{id}", h.DeleteForLab)
	})

	labID := int64(1)
	m := &Message{Name: "John Smith", Email: "john@gmail.com", Body: "hi", LabID: &labID}
	require.NoError(t, repo.Create(context.Background(), m))

	// Another lab cannot delete it.
	req := httptest.NewRequest(http.MethodDelete, "/portal/messages/1", nil)
	req.Header.Set("Authorization", "Bearer "+portalToken(t, 2))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/portal/messages/1", nil)
	req.Header.Set("Authorization", "Bearer "+portalToken(t, labID))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	messages, err := repo.ListForLab(context.Background(), labID)
	require.NoError(t, err)
	require.Empty(t, messages)
}
