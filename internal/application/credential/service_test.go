package credential

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
)

type fakeRepo struct {
	saved   []*integration.CredentialSet
	deleted []integration.Marketplace
	sets    []integration.CredentialSet
	err     error
}

func (r *fakeRepo) FindActive(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) (*integration.CredentialSet, error) {
	return nil, r.err
}

func (r *fakeRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]integration.CredentialSet, error) {
	return r.sets, r.err
}

func (r *fakeRepo) Save(ctx context.Context, creds *integration.CredentialSet) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, creds)
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, marketplace)
	return nil
}

type fakeResolver struct {
	integration.CredentialResolver
	clears int
}

func (r *fakeResolver) ClearCache() { r.clears++ }

func TestService_SaveValidatesAndClearsCache(t *testing.T) {
	repo := &fakeRepo{}
	resolver := &fakeResolver{}
	service := NewService(repo, resolver, nil)

	err := service.Save(context.Background(), uuid.New(), integration.MarketplaceWalmart, integration.CredentialFields{
		ClientID:     "wm-client-id",
		ClientSecret: "wm-client-secret",
	})
	require.NoError(t, err)
	require.Len(t, repo.saved, 1)
	assert.True(t, repo.saved[0].IsActive)
	assert.Equal(t, 1, resolver.clears, "a write invalidates cached resolutions")
}

func TestService_SaveRejectsIncompleteSet(t *testing.T) {
	repo := &fakeRepo{}
	resolver := &fakeResolver{}
	service := NewService(repo, resolver, nil)

	err := service.Save(context.Background(), uuid.New(), integration.MarketplaceAmazon, integration.CredentialFields{
		ClientID:     "amzn-id",
		ClientSecret: "amzn-secret",
		// refresh token, seller id and marketplace id missing
	})
	assert.ErrorIs(t, err, integration.ErrInvalidCredential)
	assert.Empty(t, repo.saved)
	assert.Zero(t, resolver.clears)
}

func TestService_ListMasksSecrets(t *testing.T) {
	repo := &fakeRepo{sets: []integration.CredentialSet{{
		OrganizationID: uuid.New(),
		Marketplace:    integration.MarketplaceWalmart,
		Fields: integration.CredentialFields{
			ClientID:     "wm-client-9876",
			ClientSecret: "topsecret1234",
		},
		IsActive:  true,
		UpdatedAt: time.Now(),
	}}}
	service := NewService(repo, &fakeResolver{}, nil)

	masked, err := service.List(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, masked, 1)
	assert.Equal(t, "****9876", masked[0].Fields["clientId"])
	assert.Equal(t, "****1234", masked[0].Fields["clientSecret"])
	assert.NotContains(t, masked[0].Fields["clientSecret"], "topsecret")
}

func TestService_DeleteClearsCache(t *testing.T) {
	repo := &fakeRepo{}
	resolver := &fakeResolver{}
	service := NewService(repo, resolver, nil)

	require.NoError(t, service.Delete(context.Background(), uuid.New(), integration.MarketplaceAmazon))
	assert.Equal(t, []integration.Marketplace{integration.MarketplaceAmazon}, repo.deleted)
	assert.Equal(t, 1, resolver.clears)
}

func TestService_DeleteRejectsUnknownMarketplace(t *testing.T) {
	repo := &fakeRepo{}
	resolver := &fakeResolver{}
	service := NewService(repo, resolver, nil)

	err := service.Delete(context.Background(), uuid.New(), integration.Marketplace("ebay"))
	assert.ErrorIs(t, err, integration.ErrInvalidMarketplace)
	assert.Zero(t, resolver.clears)
}
