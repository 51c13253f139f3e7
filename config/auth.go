package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Bounds accepted by golang.org/x/crypto/bcrypt.
const (
	minBcryptCost     = 4
	maxBcryptCost     = 31
	defaultBcryptCost = 10
)

// SameSite is the SameSite attribute applied to the session cookie.
type SameSite string

const (
	// SameSiteNone allows the cookie on cross-site requests (requires Secure).
	SameSiteNone SameSite = "none"
	// SameSiteLax sends the cookie on top-level navigations only.
	SameSiteLax SameSite = "lax"
	// SameSiteStrict never sends the cookie cross-site.
	SameSiteStrict SameSite = "strict"
)

// UnmarshalText implements encoding.TextUnmarshaler for SameSite.
func (s *SameSite) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "none", "lax", "strict":
		*s = SameSite(v)
		return nil
	default:
		return fmt.Errorf("invalid SameSite: %q (valid options: none, lax, strict)", v)
	}
}

// HTTPMode converts the setting to its net/http representation.
func (s SameSite) HTTPMode() http.SameSite {
	switch s {
	case SameSiteLax:
		return http.SameSiteLaxMode
	case SameSiteStrict:
		return http.SameSiteStrictMode
	default:
		return http.SameSiteNoneMode
	}
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// JWTSecret is the HMAC key used to sign session tokens.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// TokenTTL is the lifetime of a session token and its cookie.
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`

	// TokenIssuer is written to and required in the iss claim when set.
	TokenIssuer string `env:"AUTH_TOKEN_ISSUER"`

	// BcryptCost is the work factor for password hashes.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`

	// CookieSecure sets the Secure attribute on the session cookie.
	CookieSecure bool `env:"AUTH_COOKIE_SECURE" envDefault:"true"`

	// CookieSameSite sets the SameSite attribute on the session cookie.
	CookieSameSite SameSite `env:"AUTH_COOKIE_SAMESITE" envDefault:"none"`

	// RevokeOnLogout records logged-out tokens in Redis so they stop validating
	// before they expire. Off by default; logout then only clears the cookie.
	RevokeOnLogout bool `env:"AUTH_REVOKE_ON_LOGOUT" envDefault:"false"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() []string {
	var warnings []string

	if a.TokenTTL <= 0 {
		warnings = append(warnings, fmt.Sprintf("AUTH_TOKEN_TTL %s is not positive; using 1h", a.TokenTTL))
		a.TokenTTL = time.Hour
	}
	if a.BcryptCost < minBcryptCost || a.BcryptCost > maxBcryptCost {
		warnings = append(warnings,
			fmt.Sprintf("AUTH_BCRYPT_COST %d out of range [%d,%d]; using %d",
				a.BcryptCost, minBcryptCost, maxBcryptCost, defaultBcryptCost))
		a.BcryptCost = defaultBcryptCost
	}
	if a.CookieSameSite == "" {
		a.CookieSameSite = SameSiteNone
	}
	if a.CookieSameSite == SameSiteNone && !a.CookieSecure {
		warnings = append(warnings, "AUTH_COOKIE_SAMESITE=none requires a Secure cookie; browsers will reject it")
	}
	a.TokenIssuer = strings.TrimSpace(a.TokenIssuer)
	return warnings
}
