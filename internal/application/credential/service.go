package credential

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
)

// MaskedCredential is the read model for credential sets. Secret values are
// reduced to their last four characters; plaintext is never returned after a
// write.
type MaskedCredential struct {
	Marketplace integration.Marketplace `json:"marketplace"`
	Fields      map[string]string       `json:"fields"`
	IsActive    bool                    `json:"is_active"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// Service manages stored marketplace credentials. Every write invalidates
// the resolver cache so the next sync run sees the new set immediately.
type Service struct {
	repo     integration.CredentialRepository
	resolver integration.CredentialResolver
	logger   *zap.Logger
}

// NewService creates a credential management service
func NewService(repo integration.CredentialRepository, resolver integration.CredentialResolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, resolver: resolver, logger: logger}
}

// Save validates and stores the credential set for an (organization,
// marketplace) pair, replacing any existing set
func (s *Service) Save(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace, fields integration.CredentialFields) error {
	creds := &integration.CredentialSet{
		OrganizationID: organizationID,
		Marketplace:    marketplace,
		Fields:         fields,
		IsActive:       true,
		UpdatedAt:      time.Now(),
	}
	if err := creds.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, creds); err != nil {
		return err
	}

	s.resolver.ClearCache()
	s.logger.Info("credential set saved",
		zap.String("organization_id", organizationID.String()),
		zap.String("marketplace", marketplace.String()),
	)
	return nil
}

// List returns the organization's credential sets with secrets masked
func (s *Service) List(ctx context.Context, organizationID uuid.UUID) ([]MaskedCredential, error) {
	sets, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	masked := make([]MaskedCredential, 0, len(sets))
	for i := range sets {
		masked = append(masked, MaskedCredential{
			Marketplace: sets[i].Marketplace,
			Fields:      sets[i].Masked(),
			IsActive:    sets[i].IsActive,
			UpdatedAt:   sets[i].UpdatedAt,
		})
	}
	return masked, nil
}

// Delete removes the pair's credential set and drops any cached resolution
func (s *Service) Delete(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) error {
	if !marketplace.IsValid() {
		return integration.ErrInvalidMarketplace
	}
	if err := s.repo.Delete(ctx, organizationID, marketplace); err != nil {
		return err
	}

	s.resolver.ClearCache()
	s.logger.Info("credential set deleted",
		zap.String("organization_id", organizationID.String()),
		zap.String("marketplace", marketplace.String()),
	)
	return nil
}
