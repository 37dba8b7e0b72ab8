package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

const testSecret = "test-secret-key-for-jwt-signing"

func testVerifier() *Verifier {
	return NewVerifier(config.JWTConfig{Secret: testSecret, Issuer: "marketplace-sync"})
}

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(orgID uuid.UUID) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "marketplace-sync",
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrganizationID: orgID.String(),
		UserID:         uuid.NewString(),
		Role:           RoleMember,
	}
}

func TestVerifier_ValidToken(t *testing.T) {
	orgID := uuid.New()
	tokenString := signToken(t, validClaims(orgID), testSecret)

	claims, err := testVerifier().Verify(tokenString)
	require.NoError(t, err)

	gotOrg, err := claims.OrganizationUUID()
	require.NoError(t, err)
	assert.Equal(t, orgID, gotOrg)
	assert.False(t, claims.IsAdmin())
}

func TestVerifier_AdminRole(t *testing.T) {
	c := validClaims(uuid.New())
	c.Role = RoleAdmin
	tokenString := signToken(t, c, testSecret)

	claims, err := testVerifier().Verify(tokenString)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestVerifier_ExpiredToken(t *testing.T) {
	c := validClaims(uuid.New())
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	tokenString := signToken(t, c, testSecret)

	_, err := testVerifier().Verify(tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifier_WrongSecret(t *testing.T) {
	tokenString := signToken(t, validClaims(uuid.New()), "some-other-secret")

	_, err := testVerifier().Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_WrongIssuer(t *testing.T) {
	c := validClaims(uuid.New())
	c.Issuer = "someone-else"
	tokenString := signToken(t, c, testSecret)

	_, err := testVerifier().Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_MissingOrganization(t *testing.T) {
	c := validClaims(uuid.New())
	c.OrganizationID = ""
	tokenString := signToken(t, c, testSecret)

	_, err := testVerifier().Verify(tokenString)
	assert.ErrorIs(t, err, ErrMissingOrganizationID)
}

func TestVerifier_MalformedOrganization(t *testing.T) {
	c := validClaims(uuid.New())
	c.OrganizationID = "not-a-uuid"
	tokenString := signToken(t, c, testSecret)

	_, err := testVerifier().Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
