package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credentialapp "github.com/rakshit782/marketplace-sync-dashboard/internal/application/credential"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/dto"
)

type fakeCredentialRepo struct {
	sets map[string]*integration.CredentialSet
	err  error
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{sets: make(map[string]*integration.CredentialSet)}
}

func credKey(orgID uuid.UUID, marketplace integration.Marketplace) string {
	return orgID.String() + ":" + string(marketplace)
}

func (f *fakeCredentialRepo) FindActive(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) (*integration.CredentialSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	if set, ok := f.sets[credKey(organizationID, marketplace)]; ok {
		return set, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCredentialRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]integration.CredentialSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []integration.CredentialSet
	for _, set := range f.sets {
		if set.OrganizationID == organizationID {
			out = append(out, *set)
		}
	}
	return out, nil
}

func (f *fakeCredentialRepo) Save(ctx context.Context, set *integration.CredentialSet) error {
	if f.err != nil {
		return f.err
	}
	f.sets[credKey(set.OrganizationID, set.Marketplace)] = set
	return nil
}

func (f *fakeCredentialRepo) Delete(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) error {
	if f.err != nil {
		return f.err
	}
	key := credKey(organizationID, marketplace)
	if _, ok := f.sets[key]; !ok {
		return shared.ErrNotFound
	}
	delete(f.sets, key)
	return nil
}

func newCredentialFixture() (*fakeCredentialRepo, *CredentialHandler) {
	repo := newFakeCredentialRepo()
	service := credentialapp.NewService(repo, &fakeResolver{}, nil)
	return repo, NewCredentialHandler(service)
}

func TestCredentialHandler_SaveRequiresAdmin(t *testing.T) {
	orgID := uuid.New()
	_, handler := newCredentialFixture()
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/credentials/walmart",
		`{"client_id":"id","client_secret":"secret"}`))

	require.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
}

func TestCredentialHandler_Save(t *testing.T) {
	orgID := uuid.New()
	repo, handler := newCredentialFixture()
	engine := newTestRouter(orgID, true, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/credentials/walmart",
		`{"client_id":"wm-client","client_secret":"wm-secret"}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	saved, ok := repo.sets[credKey(orgID, integration.MarketplaceWalmart)]
	require.True(t, ok)
	assert.Equal(t, "wm-client", saved.Fields.ClientID)
	assert.True(t, saved.IsActive)
}

func TestCredentialHandler_SaveIncompleteAmazonSet(t *testing.T) {
	orgID := uuid.New()
	repo, handler := newCredentialFixture()
	engine := newTestRouter(orgID, true, handler)

	// amazon needs refresh token, seller id and marketplace id as well
	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/credentials/amazon",
		`{"client_id":"id","client_secret":"secret"}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidCredential, resp.Error.Code)
	assert.Empty(t, repo.sets)
}

func TestCredentialHandler_SaveMissingFields(t *testing.T) {
	orgID := uuid.New()
	_, handler := newCredentialFixture()
	engine := newTestRouter(orgID, true, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/credentials/walmart",
		`{"client_id":"only-id"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCredentialHandler_ListMasked(t *testing.T) {
	orgID := uuid.New()
	repo, handler := newCredentialFixture()
	repo.sets[credKey(orgID, integration.MarketplaceWalmart)] = &integration.CredentialSet{
		OrganizationID: orgID,
		Marketplace:    integration.MarketplaceWalmart,
		Fields: integration.CredentialFields{
			ClientID:     "client-12345678",
			ClientSecret: "secret-87654321",
		},
		IsActive: true,
	}
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, httptest.NewRequest(http.MethodGet, "/api/v1/credentials", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "client-12345678")
	assert.NotContains(t, body, "secret-87654321")

	resp := decodeResponse(t, rec)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var masked []credentialapp.MaskedCredential
	require.NoError(t, json.Unmarshal(data, &masked))
	require.Len(t, masked, 1)
	assert.Equal(t, integration.MarketplaceWalmart, masked[0].Marketplace)
}

func TestCredentialHandler_Delete(t *testing.T) {
	orgID := uuid.New()
	repo, handler := newCredentialFixture()
	repo.sets[credKey(orgID, integration.MarketplaceAmazon)] = testCredentials(orgID, integration.MarketplaceAmazon)
	engine := newTestRouter(orgID, true, handler)

	rec := perform(engine, httptest.NewRequest(http.MethodDelete, "/api/v1/credentials/amazon", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.sets)
}

func TestCredentialHandler_DeleteRequiresAdmin(t *testing.T) {
	orgID := uuid.New()
	repo, handler := newCredentialFixture()
	repo.sets[credKey(orgID, integration.MarketplaceAmazon)] = testCredentials(orgID, integration.MarketplaceAmazon)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, httptest.NewRequest(http.MethodDelete, "/api/v1/credentials/amazon", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, repo.sets, 1)
}
