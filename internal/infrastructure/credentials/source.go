package credentials

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// Source fetches the active credential set for an (organization, marketplace)
// pair from one backing store. Sources return integration.ErrNotConfigured
// when no set exists; they do not validate field completeness, the resolver
// does that before handing the set to callers.
type Source interface {
	// Kind identifies the backing store
	Kind() config.CredentialSource

	// Fetch loads the pair's credential set from the backing store
	Fetch(ctx context.Context, marketplace integration.Marketplace, organizationID uuid.UUID) (*integration.CredentialSet, error)
}

// NewSource builds the Source selected by configuration. The database source
// needs a repository; passing a nil repository with the database source
// configured is a wiring error.
func NewSource(cfg config.CredentialsConfig, repo integration.CredentialRepository, ssmClient ParameterAPI) (Source, error) {
	switch cfg.Source {
	case config.CredentialSourceEnv:
		return NewEnvSource(nil), nil
	case config.CredentialSourceDatabase:
		if repo == nil {
			return nil, fmt.Errorf("credentials: database source requires a credential repository")
		}
		return NewDatabaseSource(repo), nil
	case config.CredentialSourceSSM:
		if ssmClient == nil {
			return nil, fmt.Errorf("credentials: ssm source requires an SSM client")
		}
		return NewSSMSource(ssmClient, cfg.SSMPrefix), nil
	default:
		return nil, fmt.Errorf("credentials: unsupported source %q", cfg.Source)
	}
}
