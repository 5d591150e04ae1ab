package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(t *testing.T, allowed []string, method, origin string, preflight bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	handler := CORS(allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/api/chat", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, called
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	rec, called := corsRequest(t, []string{"https://widget.labease.app"}, http.MethodPost, "https://widget.labease.app", false)

	assert.True(t, called)
	assert.Equal(t, "https://widget.labease.app", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	rec, called := corsRequest(t, []string{"https://widget.labease.app"}, http.MethodPost, "https://evil.example", false)

	assert.True(t, called, "non-preflight requests still reach the handler")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardEchoesOrigin(t *testing.T) {
	rec, _ := corsRequest(t, []string{"*"}, http.MethodGet, "https://random.example", false)

	assert.Equal(t, "https://random.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSShortCircuitsPreflight(t *testing.T) {
	rec, called := corsRequest(t, []string{"https://widget.labease.app"}, http.MethodOptions, "https://widget.labease.app", true)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
