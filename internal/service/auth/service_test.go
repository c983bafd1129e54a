package auth

import (
	"context"
	"testing"
	"time"

	"mentor_sync/pkg/errorx"
	"mentor_sync/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mapCache map[string]string

func (m mapCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	m[key] = value
	return nil
}

func (m mapCache) Get(_ context.Context, key string) (string, error) { return m[key], nil }

func (m mapCache) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}


func newService(t *testing.T) *Service {
	t.Helper()
	jwt.Init("test-secret-test-secret-test-secret", 1)
	hash, err := bcrypt.GenerateFromPassword([]byte("device-key"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(mapCache{}, string(hash))
}

func TestIssueTokenAndValidate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	tok, err := s.IssueToken(ctx, "dev-1", "device-key")
	require.NoError(t, err)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	claims, err := jwt.ParseToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "dev-1", claims.DeviceID)

	ok, err := s.ValidateTokenID(ctx, "dev-1", claims.TokenID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReissueRevokesOldToken(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	first, err := s.IssueToken(ctx, "dev-1", "device-key")
	require.NoError(t, err)
	oldClaims, err := jwt.ParseToken(first.Token)
	require.NoError(t, err)

	_, err = s.IssueToken(ctx, "dev-1", "device-key")
	require.NoError(t, err)

	ok, err := s.ValidateTokenID(ctx, "dev-1", oldClaims.TokenID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIssueTokenRejectsBadKey(t *testing.T) {
	s := newService(t)
	_, err := s.IssueToken(context.Background(), "dev-1", "wrong")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	unconfigured := NewAuthService(mapCache{}, "")
	_, err = unconfigured.IssueToken(context.Background(), "dev-1", "device-key")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestValidateUnknownDevice(t *testing.T) {
	s := newService(t)
	ok, err := s.ValidateTokenID(context.Background(), "ghost", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}
