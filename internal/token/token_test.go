package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)

	tok, err := s.Issue(42, PurposeActivate)
	require.NoError(t, err)

	id, ok := s.Verify(tok, PurposeActivate)
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}

func TestSigner_WrongPurpose(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)

	tok, err := s.Issue(42, PurposeActivate)
	require.NoError(t, err)

	_, ok := s.Verify(tok, PurposeReset)
	assert.False(t, ok, "an activation token must not reset a password")
}

func TestSigner_Expired(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := s.Issue(42, PurposeReset)
	require.NoError(t, err)

	_, ok := s.Verify(tok, PurposeReset)
	assert.False(t, ok)
}

func TestSigner_Rejects(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)
	valid, err := s.Issue(7, PurposeReset)
	require.NoError(t, err)

	other, err := NewSigner("other-secret", time.Hour).Issue(7, PurposeReset)
	require.NoError(t, err)

	activate, err := s.Issue(7, PurposeActivate)
	require.NoError(t, err)
	validParts := strings.Split(valid, ".")
	activateParts := strings.Split(activate, ".")
	tampered := validParts[0] + "." + activateParts[1] + "." + validParts[2]

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Purpose:          PurposeReset,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "7"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Purpose: PurposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Purpose: PurposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"other secret", other},
		{"swapped payload", tampered},
		{"missing expiry", noExp},
		{"non numeric subject", badSubject},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := s.Verify(tt.token, PurposeReset)
			assert.False(t, ok)
			assert.Zero(t, id)
		})
	}
}

func TestSigner_IssueRequiresUser(t *testing.T) {
	_, err := NewSigner("test-secret", time.Hour).Issue(0, PurposeActivate)
	assert.Error(t, err)
}
