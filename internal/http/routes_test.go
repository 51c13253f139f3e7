package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fakes "github.com/target/authgate/internal/mocks/auth"
	"github.com/target/authgate/internal/service"
)

type routerFixture struct {
	handler http.Handler
	users   *fakes.MemoryUserStore
	tokens  *fakes.StaticTokenIssuer
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	users := fakes.NewMemoryUserStore()
	tokens := fakes.NewStaticTokenIssuer()
	svc := service.NewAuthService(service.AuthServiceOptions{
		Users:       users,
		Credentials: service.Credentials{Hasher: fakes.PlainHasher{}, Tokens: tokens},
	})
	h := NewRouter(RouterServices{
		Auth:   svc,
		Cookie: CookieConfig{Secure: true, SameSite: http.SameSiteNoneMode},
	})
	return routerFixture{handler: h, users: users, tokens: tokens}
}

func (f routerFixture) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func tokenCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == TokenCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", TokenCookieName)
	return nil
}

const annSignup = `{"name":"Ann","email":"ann@x.com","password":"secret1","number":1001}`

func TestRouter_Root(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "JWT Backend API is running! Use /signup, /login, /checkAuth endpoints.", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_WrongMethodOnKnownPath(t *testing.T) {
	f := newRouterFixture(t)

	tests := []struct {
		method string
		path   string
		allow  string
	}{
		{method: http.MethodGet, path: "/login", allow: "POST"},
		{method: http.MethodGet, path: "/signup", allow: "POST"},
		{method: http.MethodDelete, path: "/logout", allow: "POST"},
		{method: http.MethodPost, path: "/checkAuth", allow: "GET, HEAD"},
		{method: http.MethodPost, path: "/healthz", allow: "GET, HEAD"},
		{method: http.MethodPost, path: "/", allow: "GET, HEAD"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, tt.allow, rec.Header().Get("Allow"))
			assert.Equal(t, "Method not allowed", decodeBody(t, rec)["message"])
		})
	}

	rec := f.do(t, http.MethodPost, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Signup(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/signup", annSignup)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "User created", body["message"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "Ann", user["name"])
	assert.Equal(t, "ann@x.com", user["email"])
	assert.EqualValues(t, 1001, user["number"])
	assert.Equal(t, "normal", user["role"])
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "secret1")

	c := tokenCookie(t, rec)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Greater(t, c.MaxAge, 0)
}

func TestRouter_Signup_NumberAsString(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/signup",
		`{"name":"Ann","email":"ann@x.com","password":"pw","number":"42","role":"admin","extra":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.EqualValues(t, 42, user["number"])
	assert.Equal(t, "admin", user["role"])
}

func TestRouter_Signup_Duplicates(t *testing.T) {
	f := newRouterFixture(t)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/signup", annSignup).Code)

	rec := f.do(t, http.MethodPost, "/signup", annSignup)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already registered", decodeBody(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/signup",
		`{"name":"Bob","email":"bob@x.com","password":"pw","number":1001}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Number already registered", decodeBody(t, rec)["message"])
	assert.Equal(t, 1, f.users.Len())
}

func TestRouter_Signup_Validation(t *testing.T) {
	f := newRouterFixture(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing name", body: `{"email":"a@x.com","password":"pw","number":1}`, field: "name"},
		{name: "bad email", body: `{"name":"A","email":"not-an-email","password":"pw","number":1}`, field: "email"},
		{name: "missing password", body: `{"name":"A","email":"a@x.com","number":1}`, field: "password"},
		{name: "missing number", body: `{"name":"A","email":"a@x.com","password":"pw"}`, field: "number"},
		{name: "fractional number", body: `{"name":"A","email":"a@x.com","password":"pw","number":1.5}`, field: "number"},
		{name: "non-numeric number", body: `{"name":"A","email":"a@x.com","password":"pw","number":"abc"}`, field: "number"},
		{
			name:  "password too long",
			body:  `{"name":"A","email":"a@x.com","password":"` + strings.Repeat("p", 73) + `","number":1}`,
			field: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/signup", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "Validation failed", body["message"])
			errs, ok := body["errors"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, errs, tt.field)
		})
	}
	assert.Equal(t, 0, f.users.Len())
}

func TestRouter_Signup_MalformedJSON(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/signup", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/signup", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Login(t *testing.T) {
	f := newRouterFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/signup", annSignup).Code)

	t.Run("success", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/login", `{"email":"ann@x.com","password":"secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Equal(t, "Login successful", body["message"])
		assert.Equal(t, "ann@x.com", body["user"].(map[string]any)["email"])
		assert.NotEmpty(t, tokenCookie(t, rec).Value)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/login", `{"email":"ann@x.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/login", `{"email":"nobody@x.com","password":"secret1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "User not found", decodeBody(t, rec)["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/login", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errs := decodeBody(t, rec)["errors"].(map[string]any)
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "password")
	})
}

func TestRouter_CheckAuth(t *testing.T) {
	f := newRouterFixture(t)
	signup := f.do(t, http.MethodPost, "/signup", annSignup)
	require.Equal(t, http.StatusCreated, signup.Code)
	cookie := tokenCookie(t, signup)

	t.Run("no cookie", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/checkAuth", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", decodeBody(t, rec)["message"])
	})

	t.Run("garbage cookie", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/checkAuth", "", &http.Cookie{Name: TokenCookieName, Value: "junk"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token", decodeBody(t, rec)["message"])
	})

	t.Run("valid cookie", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/checkAuth", "", &http.Cookie{Name: TokenCookieName, Value: cookie.Value})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Authenticated", body["message"])
		assert.Equal(t, "normal", body["role"])
	})
}

func TestRouter_CheckAuth_DeletedUser(t *testing.T) {
	f := newRouterFixture(t)
	signup := f.do(t, http.MethodPost, "/signup", annSignup)
	require.Equal(t, http.StatusCreated, signup.Code)
	cookie := tokenCookie(t, signup)

	id := decodeBody(t, signup)["user"].(map[string]any)["id"].(string)
	require.NoError(t, f.users.Delete(t.Context(), id))

	rec := f.do(t, http.MethodGet, "/checkAuth", "", &http.Cookie{Name: TokenCookieName, Value: cookie.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not found", decodeBody(t, rec)["message"])
}

func TestRouter_Logout(t *testing.T) {
	f := newRouterFixture(t)
	signup := f.do(t, http.MethodPost, "/signup", annSignup)
	require.Equal(t, http.StatusCreated, signup.Code)
	old := tokenCookie(t, signup)

	rec := f.do(t, http.MethodPost, "/logout", "", &http.Cookie{Name: TokenCookieName, Value: old.Value})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeBody(t, rec)["message"])

	cleared := tokenCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.True(t, cleared.HttpOnly)
	assert.True(t, cleared.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cleared.SameSite)

	// Logout is client-side only; a retained token keeps working until it expires.
	rec = f.do(t, http.MethodGet, "/checkAuth", "", &http.Cookie{Name: TokenCookieName, Value: old.Value})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Logging out without a cookie still succeeds.
	rec = f.do(t, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(t, http.MethodHead, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
