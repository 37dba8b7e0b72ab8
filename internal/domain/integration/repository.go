package integration

import (
	"context"

	"github.com/google/uuid"
)

// CredentialRepository is the port interface for persisted credential sets.
// One active set exists per (organization, marketplace) pair; Save replaces
// any existing set for the pair.
type CredentialRepository interface {
	// FindActive returns the active credential set for the pair, or
	// shared.ErrNotFound when none exists
	FindActive(ctx context.Context, organizationID uuid.UUID, marketplace Marketplace) (*CredentialSet, error)

	// ListByOrganization returns every credential set of an organization
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]CredentialSet, error)

	// Save inserts or replaces the credential set for its pair
	Save(ctx context.Context, creds *CredentialSet) error

	// Delete removes the credential set for the pair
	Delete(ctx context.Context, organizationID uuid.UUID, marketplace Marketplace) error
}
