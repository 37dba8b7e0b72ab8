package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// Role values carried in the "role" claim
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Common errors
var (
	ErrInvalidToken          = errors.New("invalid token")
	ErrExpiredToken          = errors.New("token has expired")
	ErrTokenNotYetValid      = errors.New("token is not yet valid")
	ErrInvalidClaims         = errors.New("invalid token claims")
	ErrMissingOrganizationID = errors.New("missing organization_id in claims")
)

// Claims represents the custom JWT claims the dashboard issues
type Claims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id,omitempty"`
	Role           string `json:"role,omitempty"`
}

// OrganizationUUID parses the organization_id claim
func (c *Claims) OrganizationUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.OrganizationID)
	if err != nil {
		return uuid.Nil, ErrInvalidClaims
	}
	return id, nil
}

// IsAdmin reports whether the token carries the admin role
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Verifier validates bearer tokens issued by the dashboard's identity
// provider. Token issuance lives outside this service.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a token verifier from JWT configuration
func NewVerifier(cfg config.JWTConfig) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify validates a token string and returns its claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.OrganizationID == "" {
		return nil, ErrMissingOrganizationID
	}
	if _, err := uuid.Parse(claims.OrganizationID); err != nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
