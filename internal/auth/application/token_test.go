package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marginalfriend/my-garage/internal/auth/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue(42, []domain.RoleName{domain.RoleCustomer, domain.RoleAdmin})
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), identity.AccountID)
	require.True(t, identity.HasRole(domain.RoleCustomer))
	require.True(t, identity.IsStaff())
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Issue(1, []domain.RoleName{domain.RoleCustomer})
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Verify(token)
	require.Error(t, err)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, err := svc.Issue(1, []domain.RoleName{domain.RoleCustomer})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.Error(t, err)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	_, err := svc.Verify("not-a-token")
	require.Error(t, err)
}

func TestIssue_ZeroTTLHasNoExpiry(t *testing.T) {
	svc := NewTokenService("test-secret", 0)

	token, err := svc.Issue(7, []domain.RoleName{domain.RoleCustomer})
	require.NoError(t, err)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, uint(7), identity.AccountID)
	require.False(t, identity.IsStaff())
}
