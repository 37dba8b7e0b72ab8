package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/google/uuid"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// ParameterAPI is the subset of the SSM client the source uses
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMSource reads credentials from AWS Systems Manager Parameter Store.
// Parameters live under {prefix}/{organizationID}/{marketplace}/{field}, as
// SecureString values:
//
//	/marketplace-sync/9f1c.../amazon/client-id
//	/marketplace-sync/9f1c.../amazon/client-secret
//	/marketplace-sync/9f1c.../amazon/refresh-token
//	/marketplace-sync/9f1c.../amazon/seller-id
//	/marketplace-sync/9f1c.../amazon/marketplace-id
type SSMSource struct {
	client ParameterAPI
	prefix string
}

// NewSSMSource creates a Parameter Store credential source
func NewSSMSource(client ParameterAPI, prefix string) *SSMSource {
	return &SSMSource{
		client: client,
		prefix: strings.TrimRight(prefix, "/"),
	}
}

// Kind identifies the backing store
func (s *SSMSource) Kind() config.CredentialSource {
	return config.CredentialSourceSSM
}

// Fetch loads the pair's credential set from Parameter Store. Missing
// optional parameters resolve to empty fields; a pair without a client-id
// parameter is treated as not configured.
func (s *SSMSource) Fetch(ctx context.Context, marketplace integration.Marketplace, organizationID uuid.UUID) (*integration.CredentialSet, error) {
	base := fmt.Sprintf("%s/%s/%s", s.prefix, organizationID, marketplace)

	clientID, found, err := s.getParameter(ctx, base+"/client-id")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: no parameters under %s", integration.ErrNotConfigured, base)
	}

	fields := integration.CredentialFields{ClientID: clientID}
	for name, dst := range map[string]*string{
		"/client-secret":  &fields.ClientSecret,
		"/refresh-token":  &fields.RefreshToken,
		"/seller-id":      &fields.SellerID,
		"/marketplace-id": &fields.MarketplaceID,
	} {
		value, _, err := s.getParameter(ctx, base+name)
		if err != nil {
			return nil, err
		}
		*dst = value
	}

	return &integration.CredentialSet{
		OrganizationID: organizationID,
		Marketplace:    marketplace,
		Fields:         fields,
		IsActive:       true,
		UpdatedAt:      time.Now(),
	}, nil
}

// getParameter fetches one decrypted parameter, reporting absence instead of
// failing on ParameterNotFound
func (s *SSMSource) getParameter(ctx context.Context, name string) (string, bool, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", false, nil
	}
	return *out.Parameter.Value, true, nil
}
