package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// EnvSource reads credentials from process environment variables, e.g.
// AMAZON_CLIENT_ID and WALMART_CLIENT_SECRET. Every organization resolves to
// the same set, so this source only suits single-tenant deployments and local
// development.
type EnvSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSource creates an environment-variable credential source. A nil
// lookup uses os.LookupEnv.
func NewEnvSource(lookup func(string) (string, bool)) *EnvSource {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &EnvSource{lookup: lookup}
}

// Kind identifies the backing store
func (s *EnvSource) Kind() config.CredentialSource {
	return config.CredentialSourceEnv
}

// Fetch loads the marketplace's credential set from environment variables
func (s *EnvSource) Fetch(ctx context.Context, marketplace integration.Marketplace, organizationID uuid.UUID) (*integration.CredentialSet, error) {
	prefix := strings.ToUpper(marketplace.String()) + "_"

	clientID, _ := s.lookup(prefix + "CLIENT_ID")
	clientSecret, _ := s.lookup(prefix + "CLIENT_SECRET")
	if clientID == "" && clientSecret == "" {
		return nil, fmt.Errorf("%w: no %s* environment variables set", integration.ErrNotConfigured, prefix)
	}

	refreshToken, _ := s.lookup(prefix + "REFRESH_TOKEN")
	sellerID, _ := s.lookup(prefix + "SELLER_ID")
	marketplaceID, _ := s.lookup(prefix + "MARKETPLACE_ID")

	return &integration.CredentialSet{
		OrganizationID: organizationID,
		Marketplace:    marketplace,
		Fields: integration.CredentialFields{
			ClientID:      clientID,
			ClientSecret:  clientSecret,
			RefreshToken:  refreshToken,
			SellerID:      sellerID,
			MarketplaceID: marketplaceID,
		},
		IsActive:  true,
		UpdatedAt: time.Now(),
	}, nil
}
