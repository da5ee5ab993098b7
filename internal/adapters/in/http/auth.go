package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

// AuthConfig holds the bearer token settings.
type AuthConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims carries the caller's platform role next to the registered claims.
// The subject is the caller's id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens and turns them into actors.
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
}

func NewAuthenticator(cfg AuthConfig) (*Authenticator, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("jwt secret is empty")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Authenticator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Issue signs a token for a. Identity providers in front of the service use
// the same claims layout.
func (a *Authenticator) Issue(subject actor.Actor, now time.Time) (string, error) {
	if err := subject.Validate(); err != nil {
		return "", err
	}
	claims := Claims{
		Role: string(subject.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID().String(),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates a raw token and returns the actor it names.
func (a *Authenticator) Parse(raw string) (actor.Actor, error) {
	claims := &Claims{}
	token, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return actor.Actor{}, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}
	role, err := actor.ParseRole(claims.Role)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("%w: invalid role", ErrUnauthorized)
	}
	// Only the process itself acts as system.
	if role == actor.RoleSystem {
		return actor.Actor{}, fmt.Errorf("%w: invalid role", ErrUnauthorized)
	}
	return actor.New(id, role)
}

// Middleware rejects requests without a valid bearer token and stores the
// caller in the echo context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return fmt.Errorf("%w: authorization header missing", ErrUnauthorized)
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return fmt.Errorf("%w: authorization header invalid", ErrUnauthorized)
			}

			caller, err := a.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}
			c.Set(actorContextKey, caller)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) actor.Actor {
	a, _ := c.Get(actorContextKey).(actor.Actor)
	return a
}
