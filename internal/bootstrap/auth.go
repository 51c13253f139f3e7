package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/authgate/config"
	"github.com/target/authgate/internal/adapters/passwords"
	redisadapter "github.com/target/authgate/internal/adapters/redis"
	"github.com/target/authgate/internal/adapters/tokens"
	"github.com/target/authgate/internal/observability/statsd"
	"github.com/target/authgate/internal/ports"
	"github.com/target/authgate/internal/service"
)

// revocationKeyPrefix namespaces revoked token IDs in Redis.
const revocationKeyPrefix = "authgate:revoked:"

// ErrRevocationNeedsRedis is returned when logout revocation is enabled without a Redis client.
var ErrRevocationNeedsRedis = errors.New("AUTH_REVOKE_ON_LOGOUT requires a redis connection")

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	Users       ports.UserStore
	RedisClient redis.UniversalClient
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// BuildAuthService wires bcrypt, JWT and the optional Redis revocation list into an AuthService.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.Users == nil {
		return nil, errors.New("user store is required")
	}

	issuer, err := tokens.NewJWTIssuer(tokens.JWTIssuerOptions{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.TokenIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("build token issuer: %w", err)
	}

	creds := service.Credentials{
		Hasher: passwords.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens: issuer,
	}

	if cfg.Auth.RevokeOnLogout {
		if cfg.RedisClient == nil {
			return nil, ErrRevocationNeedsRedis
		}
		creds.Revoker = redisadapter.NewRevocationStoreWithPrefix(cfg.RedisClient, revocationKeyPrefix)
		if cfg.Logger != nil {
			cfg.Logger.Info("token revocation on logout enabled")
		}
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Users:       cfg.Users,
		Credentials: creds,
		Observability: service.AuthObservability{
			Logger:  cfg.Logger,
			Metrics: cfg.Metrics,
		},
	}), nil
}
