package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/authgate/internal/domain/auth"
	apperrors "github.com/target/authgate/internal/errors"
)

// stubValidator is a test double for SessionValidator.
type stubValidator struct {
	validateFunc func(ctx context.Context, token string) (domainauth.Principal, error)
	gotToken     string
}

func (s *stubValidator) ValidateSession(ctx context.Context, token string) (domainauth.Principal, error) {
	s.gotToken = token
	if s.validateFunc != nil {
		return s.validateFunc(ctx, token)
	}
	return domainauth.Principal{UserID: "u1", Role: domainauth.RoleAdmin}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRequireAuth_Success(t *testing.T) {
	stub := &stubValidator{}
	handler := RequireAuth(stub, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := GetPrincipalFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "u1", p.UserID)
		assert.True(t, p.IsAdmin())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/checkAuth", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc", stub.gotToken)
}

func TestRequireAuth_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "unauthorized", err: apperrors.Unauthorized("Invalid token"), wantStatus: http.StatusUnauthorized, wantMsg: "Invalid token"},
		{name: "not found maps to 401", err: apperrors.NotFound("User not found"), wantStatus: http.StatusUnauthorized, wantMsg: "User not found"},
		{name: "internal hides detail", err: errors.New("db exploded"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubValidator{validateFunc: func(context.Context, string) (domainauth.Principal, error) {
				return domainauth.Principal{}, tt.err
			}}
			called := false
			handler := RequireAuth(stub, discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkAuth", nil))

			assert.False(t, called)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.wantMsg+`"}`, rec.Body.String())
			assert.Empty(t, stub.gotToken)
		})
	}
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "boom")
}

func TestLogging_RecordsStatus(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Contains(t, logs.String(), `"status":418`)
	assert.Contains(t, logs.String(), `"path":"/login"`)
	assert.Contains(t, logs.String(), `"method":"POST"`)
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("reflects any origin by default", func(t *testing.T) {
		handler := CORS(CORSConfig{})(ok)
		req := httptest.NewRequest(http.MethodGet, "/checkAuth", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard behaves like default", func(t *testing.T) {
		handler := CORS(CORSConfig{AllowedOrigins: []string{" * "}})(ok)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://other.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://other.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricted origins", func(t *testing.T) {
		handler := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com/"}})(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		handler := CORS(CORSConfig{})(ok)
		req := httptest.NewRequest(http.MethodOptions, "/login", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Less(t, rec.Code, 300)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}

func TestNormalizeOrigins(t *testing.T) {
	assert.Nil(t, normalizeOrigins(nil))
	assert.Nil(t, normalizeOrigins([]string{"", "  "}))
	assert.Nil(t, normalizeOrigins([]string{"https://a.com", "*"}))
	assert.Equal(t, []string{"https://a.com", "https://b.com"},
		normalizeOrigins([]string{" https://a.com/ ", "https://b.com"}))
}
