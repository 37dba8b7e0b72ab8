package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CredentialFields holds the marketplace API secrets of one credential set.
// Which fields are required depends on the marketplace; Validate enforces it.
type CredentialFields struct {
	ClientID      string `json:"clientId"`
	ClientSecret  string `json:"clientSecret"`
	RefreshToken  string `json:"refreshToken,omitempty"`
	SellerID      string `json:"sellerId,omitempty"`
	MarketplaceID string `json:"marketplaceId,omitempty"`
}

// CredentialSet is the per-organization, per-marketplace API secrets needed to
// authenticate. One active set exists per (organization, marketplace) pair.
type CredentialSet struct {
	OrganizationID uuid.UUID
	Marketplace    Marketplace
	Fields         CredentialFields
	IsActive       bool
	UpdatedAt      time.Time
}

// Fingerprint identifies the credential set for token caching. Distinct
// organizations never share a fingerprint, so cached tokens stay isolated.
func (c *CredentialSet) Fingerprint() string {
	return fmt.Sprintf("%s:%s", c.OrganizationID, c.Marketplace)
}

// Validate checks that every field the marketplace requires is present.
// Amazon needs the full LWA refresh-token flow inputs plus seller identity;
// Walmart only needs the client-credentials pair.
func (c *CredentialSet) Validate() error {
	if !c.Marketplace.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMarketplace, c.Marketplace)
	}
	required := map[string]string{
		"clientId":     c.Fields.ClientID,
		"clientSecret": c.Fields.ClientSecret,
	}
	if c.Marketplace == MarketplaceAmazon {
		required["refreshToken"] = c.Fields.RefreshToken
		required["sellerId"] = c.Fields.SellerID
		required["marketplaceId"] = c.Fields.MarketplaceID
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s requires %s", ErrInvalidCredential, c.Marketplace, name)
		}
	}
	return nil
}

// Masked returns the credential fields with secret values reduced to their
// last four characters. Reads never expose plaintext after write.
func (c *CredentialSet) Masked() map[string]string {
	masked := make(map[string]string)
	fields := map[string]string{
		"clientId":      c.Fields.ClientID,
		"clientSecret":  c.Fields.ClientSecret,
		"refreshToken":  c.Fields.RefreshToken,
		"sellerId":      c.Fields.SellerID,
		"marketplaceId": c.Fields.MarketplaceID,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		masked[name] = maskSecret(value)
	}
	return masked
}

// maskSecret hides all but the last four characters of a secret
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// CredentialResolver is the port interface for resolving the active credential
// set of an (organization, marketplace) pair from a configured backing source.
// Resolutions are cached for a short TTL; Refresh bypasses and repopulates the
// cache, and ClearCache drops every cached entry. Implementations must return
// ErrNotConfigured when no active set exists and ErrInvalidCredential when the
// stored set is missing required fields.
type CredentialResolver interface {
	Resolve(ctx context.Context, marketplace Marketplace, organizationID uuid.UUID) (*CredentialSet, error)
	Refresh(ctx context.Context, marketplace Marketplace, organizationID uuid.UUID) (*CredentialSet, error)
	ClearCache()
}
