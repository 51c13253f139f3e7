package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	domainauth "github.com/target/authgate/internal/domain/auth"
	"github.com/target/authgate/internal/http/validation"
	"github.com/target/authgate/internal/service"
)

// TokenCookieName is the cookie that carries the session token.
const TokenCookieName = "token"

// Field limits for signup and login bodies.
const (
	maxNameLen     = 100
	maxEmailLen    = 254
	maxPasswordLen = 72 // bcrypt ignores bytes past 72
)

// SessionValidator resolves a session token to the caller's identity.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (domainauth.Principal, error)
}

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	SessionValidator
	Register(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error)
	Authenticate(ctx context.Context, email, password string) (*service.AuthResult, error)
	EndSession(ctx context.Context, token string) service.EndSessionResult
}

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc    AuthServiceInterface
	Cookie CookieConfig
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// numberField accepts a JSON number or a numeric string and keeps its text form.
type numberField struct {
	raw string
	set bool
}

func (n *numberField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	n.set = true
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &n.raw)
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	n.raw = num.String()
	return nil
}

type signupRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Number   numberField `json:"number"`
	Role     string      `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Message string                `json:"message"`
	User    domainauth.PublicUser `json:"user"`
}

// Signup registers a new user and starts a session.
// POST /signup.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	fv := validation.New().
		Validate("name", req.Name, validation.Required("Name", maxNameLen)).
		Validate("email", req.Email, validation.Email("Email", maxEmailLen)).
		Validate("password", req.Password, validation.MaxBytes("Password", maxPasswordLen))
	if !req.Number.set {
		fv.Add("number", "Number is required.")
	}
	fv.Validate("number", req.Number.raw, validation.Integer("Number"))
	if !fv.Valid() {
		RenderValidation(w, fv.Errors())
		return
	}
	number, _ := strconv.ParseInt(strings.TrimSpace(req.Number.raw), 10, 64)

	res, err := h.Svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Number:   number,
		Role:     req.Role,
	})
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, Logger: h.logger()})
		return
	}

	h.setTokenCookie(w, res.Token, res.ExpiresAt)
	WriteJSON(w, http.StatusCreated, userResponse{Message: "User created", User: res.User.Public()})
}

// Login checks credentials and starts a session.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	fv := validation.New().
		Validate("email", req.Email, validation.Required("Email", maxEmailLen)).
		Validate("password", req.Password, validation.MaxBytes("Password", maxPasswordLen))
	if !fv.Valid() {
		RenderValidation(w, fv.Errors())
		return
	}

	res, err := h.Svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		RenderError(ErrorOpts{W: w, R: r, Err: err, NotFoundStatus: http.StatusBadRequest, Logger: h.logger()})
		return
	}

	h.setTokenCookie(w, res.Token, res.ExpiresAt)
	WriteJSON(w, http.StatusOK, userResponse{Message: "Login successful", User: res.User.Public()})
}

// CheckAuth reports the caller's current role. It must be mounted behind RequireAuth.
// GET /checkAuth.
func (h *AuthHandlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	p, ok := GetPrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, Message: service.MsgUnauthorized})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Authenticated",
		"role":    string(p.Role),
	})
}

// Logout ends the session and clears the cookie. It always succeeds.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	res := h.Svc.EndSession(r.Context(), tokenFromRequest(r))
	if res.ClearCookie {
		h.clearTokenCookie(w)
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// setTokenCookie writes the session cookie so it expires with the token.
func (h *AuthHandlers) setTokenCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.Cookie.Domain,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: h.Cookie.SameSite,
		MaxAge:   maxAge,
		Expires:  expiresAt.UTC(),
	})
}

// clearTokenCookie expires the session cookie using the attributes it was set with.
func (h *AuthHandlers) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.Cookie.Domain,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: h.Cookie.SameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}
