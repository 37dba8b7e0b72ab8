package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// DatabaseSource reads credentials from the api_credentials table through the
// credential repository. This is the source the credential management API
// writes to, so database-sourced deployments are fully self-service.
type DatabaseSource struct {
	repo integration.CredentialRepository
}

// NewDatabaseSource creates a repository-backed credential source
func NewDatabaseSource(repo integration.CredentialRepository) *DatabaseSource {
	return &DatabaseSource{repo: repo}
}

// Kind identifies the backing store
func (s *DatabaseSource) Kind() config.CredentialSource {
	return config.CredentialSourceDatabase
}

// Fetch loads the pair's active credential set from the database
func (s *DatabaseSource) Fetch(ctx context.Context, marketplace integration.Marketplace, organizationID uuid.UUID) (*integration.CredentialSet, error) {
	creds, err := s.repo.FindActive(ctx, organizationID, marketplace)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", integration.ErrNotConfigured, organizationID, marketplace)
		}
		return nil, fmt.Errorf("loading credentials for %s/%s: %w", organizationID, marketplace, err)
	}
	return creds, nil
}
