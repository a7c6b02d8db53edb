package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/portal/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService() *SessionService {
	return NewSessionService(config.SessionConfig{
		Secret:     "test-secret-key-at-least-32-characters",
		Expiration: time.Hour,
		Issuer:     "portal-test",
	})
}

func TestSessionService_IssueAndParse(t *testing.T) {
	svc := newTestSessionService()
	id := Identity{UserID: uuid.New(), Username: "user1", IsAdmin: true}

	token, expiresAt, err := svc.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID.String(), claims.UserID)
	assert.Equal(t, "user1", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.NotEmpty(t, claims.ID)

	uid, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, id.UserID, uid)
	assert.InDelta(t, time.Hour.Seconds(), svc.RemainingTTL(claims).Seconds(), 2)
}

func TestSessionService_Parse_Rejects(t *testing.T) {
	svc := newTestSessionService()
	token, _, err := svc.Issue(Identity{UserID: uuid.New(), Username: "user1"})
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		_, err := svc.Parse(token[:len(token)-2] + "xx")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("different secret", func(t *testing.T) {
		other := NewSessionService(config.SessionConfig{Secret: "another-secret-another-secret-123", Expiration: time.Hour, Issuer: "portal-test"})
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("different issuer", func(t *testing.T) {
		other := NewSessionService(config.SessionConfig{Secret: "test-secret-key-at-least-32-characters", Expiration: time.Hour, Issuer: "elsewhere"})
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := newTestSessionService()
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := past.Issue(Identity{UserID: uuid.New(), Username: "user1"})
		require.NoError(t, err)

		_, err = svc.Parse(old)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &Claims{UserID: uuid.New().String(), IsAdmin: true}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func testRevocationStore(t *testing.T, store RevocationStore) {
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-2", 0))
	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryRevocationStore(t *testing.T) {
	store := NewInMemoryRevocationStore()
	testRevocationStore(t, store)

	t.Run("entries expire", func(t *testing.T) {
		require.NoError(t, store.Revoke(context.Background(), "short", time.Second))
		store.now = func() time.Time { return time.Now().Add(time.Minute) }
		revoked, err := store.IsRevoked(context.Background(), "short")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestRedisRevocationStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisRevocationStore(client)
	testRevocationStore(t, store)

	t.Run("entries expire", func(t *testing.T) {
		require.NoError(t, store.Revoke(context.Background(), "short", time.Second))
		mr.FastForward(2 * time.Second)
		revoked, err := store.IsRevoked(context.Background(), "short")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("redis down", func(t *testing.T) {
		mr.Close()
		_, err := store.IsRevoked(context.Background(), "jti-1")
		assert.Error(t, err)
	})
}
