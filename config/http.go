package config

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Port overrides the port of Addr when set (hosting platforms commonly inject PORT).
	Port string `env:"PORT"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// AllowedOrigins lists origins permitted by CORS. Empty or "*" reflects any origin.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() []string {
	var warnings []string

	if port := strings.TrimSpace(h.Port); port != "" {
		host, _, err := net.SplitHostPort(h.Addr)
		if err != nil {
			host = ""
		}
		h.Addr = net.JoinHostPort(host, port)
	}
	if strings.TrimSpace(h.Addr) == "" {
		h.Addr = ":8080"
	}

	domain := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h.CookieDomain)), ".")
	if domain != "" && isPublicSuffix(domain) {
		warnings = append(warnings,
			fmt.Sprintf("APP_COOKIE_DOMAIN %q is a public suffix; using the request host instead", h.CookieDomain))
		domain = ""
	}
	h.CookieDomain = domain

	origins := make([]string, 0, len(h.AllowedOrigins))
	for _, o := range h.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	h.AllowedOrigins = origins

	return warnings
}

// isPublicSuffix reports whether domain is itself a public suffix such as "com"
// or "github.io", where browsers refuse to set cookies.
func isPublicSuffix(domain string) bool {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	return suffix == domain
}
