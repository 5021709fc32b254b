package token_test

import (
	"testing"
	"time"

	"maltiti/internal/config"
	"maltiti/internal/domain/model"
	"maltiti/internal/infra/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *token.Manager {
	return token.NewManager(config.JWTConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
}

func TestAccessRoundTrip(t *testing.T) {
	m := newManager()
	now := time.Now()

	raw, exp, err := m.IssueAccess("user-1", model.RoleAdmin, 4, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(15*time.Minute), exp, time.Second)

	claims, err := m.ParseAccess(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, 4, claims.TV)
}

func TestRefreshRoundTrip(t *testing.T) {
	m := newManager()

	raw, _, err := m.IssueRefresh("user-1", "rt-1", time.Now())
	require.NoError(t, err)

	userID, tokenID, err := m.ParseRefresh(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "rt-1", tokenID)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	m := newManager()
	now := time.Now()

	access, _, err := m.IssueAccess("user-1", model.RoleUser, 0, now)
	require.NoError(t, err)
	refresh, _, err := m.IssueRefresh("user-1", "rt-1", now)
	require.NoError(t, err)

	_, _, err = m.ParseRefresh(access)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestExpiredAccessRejected(t *testing.T) {
	m := newManager()

	raw, _, err := m.IssueAccess("user-1", model.RoleUser, 0, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = m.ParseAccess(raw)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
