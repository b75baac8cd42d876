package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "01234567890123456789012345678901"

func TestNewService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewService(Config{Secret: "too-short"})
	assert.ErrorIs(t, err, ErrInvalidSecretLength)
}

func TestNewService_AppliesDefaults(t *testing.T) {
	t.Parallel()

	svc, err := NewService(Config{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, "accessreq", svc.cfg.Issuer)
	assert.Equal(t, 8*time.Hour, svc.cfg.TTL)
}

func TestIssueAndValidateToken(t *testing.T) {
	t.Parallel()

	svc, err := NewService(Config{Secret: testSecret, Issuer: "accessreq-test", TTL: time.Hour})
	require.NoError(t, err)

	token, expiresAt, err := svc.IssueToken("admin", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "accessreq-test", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	svc, err := NewService(Config{Secret: testSecret, TTL: -time.Minute})
	require.NoError(t, err)

	token, _, err := svc.IssueToken("admin", "admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewService(Config{Secret: testSecret})
	require.NoError(t, err)
	token, _, err := issuer.IssueToken("admin", "admin")
	require.NoError(t, err)

	verifier, err := NewService(Config{Secret: "abcdefghijabcdefghijabcdefghijab"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Malformed(t *testing.T) {
	t.Parallel()

	svc, err := NewService(Config{Secret: testSecret})
	require.NoError(t, err)

	_, err = svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsNonHMACAlg(t *testing.T) {
	t.Parallel()

	svc, err := NewService(Config{Secret: testSecret})
	require.NoError(t, err)

	// A token signed with "none" should never validate.
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
