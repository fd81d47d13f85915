package jwt

import (
	"context"
	"time"

	"github.com/flaco/hooked/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Port interface {
	AccessTTL() time.Duration
	NewToken(ctx context.Context, uid uuid.UUID, email, name string) (string, error)
	ParseClaims(ctx context.Context, tokenStr string) (Claims, error)
	VerifySubject(ctx context.Context, tokenStr string) (string, bool)
}

// Core issues and verifies HS256 access tokens. Secret, issuer and TTL
// must match between issuance and verification or every token is rejected.
type Core struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Claims carries the subject's uid and display name on top of the
// registered claim set (sub = email, iss, iat, exp).
type Claims struct {
	UID  uuid.UUID `json:"uid"`
	Name string    `json:"name"`
	jwt.RegisteredClaims
}

func New(conf config.Config) *Core {
	return &Core{
		secret: []byte(conf.Auth.JWT.Secret),
		issuer: conf.Auth.JWT.Issuer,
		ttl:    conf.Auth.JWT.AccessTTL,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (c *Core) WithClock(now func() time.Time) *Core {
	c.now = now
	return c
}

func (c *Core) AccessTTL() time.Duration {
	return c.ttl
}

func (c *Core) NewToken(ctx context.Context, uid uuid.UUID, email, name string) (string, error) {
	const op = "auth.NewToken.jwt"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	signed, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256, &Claims{
			UID:  uid,
			Name: name,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   email,
				ExpiresAt: jwt.NewNumericDate(c.now().Add(c.ttl)),
				IssuedAt:  jwt.NewNumericDate(c.now()),
				Issuer:    c.issuer,
			},
		},
	).SignedString(c.secret)
	if err != nil {
		zap.L().Error(
			ErrWhileCreatingToken.Error(),
			zap.String("op", op),
			zap.Error(err),
		)

		return "", ErrWhileCreatingToken
	}

	return signed, nil
}

func (c *Core) ParseClaims(ctx context.Context, tokenStr string) (Claims, error) {
	const op = "auth.ParseClaims.jwt"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	claims := Claims{}
	token, err := jwt.ParseWithClaims(
		tokenStr, &claims, func(token *jwt.Token) (any, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, ErrUnexpectedSignMethod
			}

			return c.secret, nil
		},
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	if err != nil {
		zap.L().Debug(
			"Failed to parse claims",
			zap.String("op", op),
			zap.Error(err),
		)

		return claims, err
	}

	if !token.Valid {
		return claims, ErrInvalidToken
	}

	return claims, nil
}

// VerifySubject is the non-throwing form used on the hot path of every
// request: invalid, expired or foreign-issuer tokens come back as not-ok,
// never as an error.
func (c *Core) VerifySubject(ctx context.Context, tokenStr string) (string, bool) {
	claims, err := c.ParseClaims(ctx, tokenStr)
	if err != nil || claims.Subject == "" {
		return "", false
	}

	return claims.Subject, true
}
