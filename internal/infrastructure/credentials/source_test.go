package credentials

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
)

func TestEnvSource_Fetch(t *testing.T) {
	vars := map[string]string{
		"AMAZON_CLIENT_ID":      "amzn-id",
		"AMAZON_CLIENT_SECRET":  "amzn-secret",
		"AMAZON_REFRESH_TOKEN":  "amzn-refresh",
		"AMAZON_SELLER_ID":      "A1SELLER",
		"AMAZON_MARKETPLACE_ID": "ATVPDKIKX0DER",
	}
	source := NewEnvSource(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})

	orgID := uuid.New()
	creds, err := source.Fetch(context.Background(), integration.MarketplaceAmazon, orgID)
	require.NoError(t, err)
	assert.Equal(t, orgID, creds.OrganizationID)
	assert.Equal(t, "amzn-id", creds.Fields.ClientID)
	assert.Equal(t, "ATVPDKIKX0DER", creds.Fields.MarketplaceID)
	assert.True(t, creds.IsActive)
}

func TestEnvSource_NotConfigured(t *testing.T) {
	source := NewEnvSource(func(string) (string, bool) { return "", false })

	_, err := source.Fetch(context.Background(), integration.MarketplaceWalmart, uuid.New())
	assert.ErrorIs(t, err, integration.ErrNotConfigured)
}

type stubRepo struct {
	integration.CredentialRepository
	creds *integration.CredentialSet
	err   error
}

func (r *stubRepo) FindActive(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) (*integration.CredentialSet, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.creds, nil
}

func TestDatabaseSource_MapsNotFound(t *testing.T) {
	source := NewDatabaseSource(&stubRepo{err: shared.ErrNotFound})

	_, err := source.Fetch(context.Background(), integration.MarketplaceWalmart, uuid.New())
	assert.ErrorIs(t, err, integration.ErrNotConfigured)
}

func TestDatabaseSource_PassesThroughOtherErrors(t *testing.T) {
	dbErr := errors.New("connection reset")
	source := NewDatabaseSource(&stubRepo{err: dbErr})

	_, err := source.Fetch(context.Background(), integration.MarketplaceWalmart, uuid.New())
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, integration.ErrNotConfigured)
}

type fakeParameterAPI struct {
	params map[string]string
	calls  []string
}

func (f *fakeParameterAPI) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(params.Name)
	f.calls = append(f.calls, name)
	value, ok := f.params[name]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:  params.Name,
			Value: aws.String(value),
		},
	}, nil
}

func TestSSMSource_Fetch(t *testing.T) {
	orgID := uuid.New()
	base := fmt.Sprintf("/marketplace-sync/%s/walmart", orgID)
	api := &fakeParameterAPI{params: map[string]string{
		base + "/client-id":     "wm-id",
		base + "/client-secret": "wm-secret",
	}}
	source := NewSSMSource(api, "/marketplace-sync")

	creds, err := source.Fetch(context.Background(), integration.MarketplaceWalmart, orgID)
	require.NoError(t, err)
	assert.Equal(t, "wm-id", creds.Fields.ClientID)
	assert.Equal(t, "wm-secret", creds.Fields.ClientSecret)
	assert.Empty(t, creds.Fields.RefreshToken, "absent optional parameters resolve to empty fields")
}

func TestSSMSource_NotConfigured(t *testing.T) {
	api := &fakeParameterAPI{params: map[string]string{}}
	source := NewSSMSource(api, "/marketplace-sync")

	_, err := source.Fetch(context.Background(), integration.MarketplaceAmazon, uuid.New())
	assert.ErrorIs(t, err, integration.ErrNotConfigured)
	assert.Len(t, api.calls, 1, "absence of client-id short-circuits the remaining reads")
}
