package marketplace

import (
	"fmt"
	"sort"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
)

// Registry implements integration.GatewayRegistry. Registration happens once
// at wiring time; lookups are read-only afterwards.
type Registry struct {
	gateways map[integration.Marketplace]integration.Gateway
}

// NewRegistry creates a registry holding the given gateways
func NewRegistry(gateways ...integration.Gateway) *Registry {
	r := &Registry{gateways: make(map[integration.Marketplace]integration.Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Marketplace()] = g
	}
	return r
}

// Gateway returns the gateway for the given marketplace
func (r *Registry) Gateway(marketplace integration.Marketplace) (integration.Gateway, error) {
	g, ok := r.gateways[marketplace]
	if !ok {
		return nil, fmt.Errorf("%w: no gateway registered for %q", integration.ErrInvalidMarketplace, marketplace)
	}
	return g, nil
}

// Marketplaces returns the marketplaces with a registered gateway
func (r *Registry) Marketplaces() []integration.Marketplace {
	result := make([]integration.Marketplace, 0, len(r.gateways))
	for m := range r.gateways {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Ensure Registry implements GatewayRegistry interface
var _ integration.GatewayRegistry = (*Registry)(nil)
