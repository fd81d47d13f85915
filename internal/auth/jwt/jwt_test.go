package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/flaco/hooked/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(secret, issuer string, ttl time.Duration) config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				Secret:    secret,
				Issuer:    issuer,
				AccessTTL: ttl,
			},
		},
	}
}

func TestCore_NewToken(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	core := New(testConfig("test-secret", "hooked-api", 15*time.Minute)).
		WithClock(func() time.Time { return base })

	tokenStr, err := core.NewToken(ctx, uid, "angler@example.com", "Flaco")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims, err := core.ParseClaims(ctx, tokenStr)
	require.NoError(t, err)

	assert.Equal(t, uid, claims.UID)
	assert.Equal(t, "Flaco", claims.Name)
	assert.Equal(t, "angler@example.com", claims.Subject)
	assert.Equal(t, "hooked-api", claims.Issuer)
	assert.Equal(t, base.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, base.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestCore_ParseClaims(t *testing.T) {
	ctx := context.Background()
	uid := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	issue := func(secret, issuer string) string {
		core := New(testConfig(secret, issuer, ttl)).
			WithClock(func() time.Time { return base })
		tokenStr, err := core.NewToken(ctx, uid, "angler@example.com", "Flaco")
		require.NoError(t, err)
		return tokenStr
	}

	tests := []struct {
		name     string
		tokenStr string
		verifier *Core
		at       time.Time
		wantErr  bool
	}{
		{
			name:     "valid token within ttl",
			tokenStr: issue("test-secret", "hooked-api"),
			verifier: New(testConfig("test-secret", "hooked-api", ttl)),
			at:       base.Add(ttl - time.Second),
			wantErr:  false,
		},
		{
			name:     "expired token",
			tokenStr: issue("test-secret", "hooked-api"),
			verifier: New(testConfig("test-secret", "hooked-api", ttl)),
			at:       base.Add(ttl + time.Second),
			wantErr:  true,
		},
		{
			name:     "wrong secret",
			tokenStr: issue("other-secret", "hooked-api"),
			verifier: New(testConfig("test-secret", "hooked-api", ttl)),
			at:       base.Add(time.Minute),
			wantErr:  true,
		},
		{
			name:     "foreign issuer",
			tokenStr: issue("test-secret", "someone-else"),
			verifier: New(testConfig("test-secret", "hooked-api", ttl)),
			at:       base.Add(time.Minute),
			wantErr:  true,
		},
		{
			name:     "tampered payload",
			tokenStr: issue("test-secret", "hooked-api") + "x",
			verifier: New(testConfig("test-secret", "hooked-api", ttl)),
			at:       base.Add(time.Minute),
			wantErr:  true,
		},
		{
			name:     "garbage input",
			tokenStr: "not-a-jwt",
			verifier: New(testConfig("test-secret", "hooked-api", ttl)),
			at:       base.Add(time.Minute),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				at := tt.at
				tt.verifier.WithClock(func() time.Time { return at })

				claims, err := tt.verifier.ParseClaims(ctx, tt.tokenStr)
				if tt.wantErr {
					assert.Error(t, err)
					return
				}

				assert.NoError(t, err)
				assert.Equal(t, uid, claims.UID)
			},
		)
	}
}

func TestCore_VerifySubject(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	core := New(testConfig("test-secret", "hooked-api", ttl)).
		WithClock(func() time.Time { return base })

	tokenStr, err := core.NewToken(ctx, uuid.New(), "angler@example.com", "Flaco")
	require.NoError(t, err)

	sub, ok := core.VerifySubject(ctx, tokenStr)
	assert.True(t, ok)
	assert.Equal(t, "angler@example.com", sub)

	sub, ok = core.VerifySubject(ctx, "garbage")
	assert.False(t, ok)
	assert.Empty(t, sub)

	core.WithClock(func() time.Time { return base.Add(ttl + time.Second) })
	sub, ok = core.VerifySubject(ctx, tokenStr)
	assert.False(t, ok)
	assert.Empty(t, sub)
}
