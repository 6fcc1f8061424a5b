package launcher

import "github.com/crosstest/crosstest/engine"

// DiscoveryRequest is an immutable bundle of selectors, filters grouped by
// role, and configuration parameters. Build one with a RequestBuilder.
//
// A *DiscoveryRequest implements engine.DiscoveryRequest, which is the
// narrower view each engine receives: engines see the selectors, the
// discovery-role filters, and the configuration map, but never the engine or
// post-discovery filters.
type DiscoveryRequest struct {
	selectors        []engine.DiscoverySelector
	engineFilters    []*EngineFilter
	discoveryFilters []engine.DiscoveryFilter
	postFilters      []PostDiscoveryFilter
	config           engine.ConfigurationParameters
}

// Selectors returns the ordered selectors of this request.
func (r *DiscoveryRequest) Selectors() []engine.DiscoverySelector {
	return append([]engine.DiscoverySelector(nil), r.selectors...)
}

// EngineFilters returns the filters that decide engine eligibility.
func (r *DiscoveryRequest) EngineFilters() []*EngineFilter {
	return append([]*EngineFilter(nil), r.engineFilters...)
}

// DiscoveryFilters returns the filters each engine applies during its own
// resolution step.
func (r *DiscoveryRequest) DiscoveryFilters() []engine.DiscoveryFilter {
	return append([]engine.DiscoveryFilter(nil), r.discoveryFilters...)
}

// PostDiscoveryFilters returns the filters the launcher applies to the
// merged forest after all engines have reported.
func (r *DiscoveryRequest) PostDiscoveryFilters() []PostDiscoveryFilter {
	return append([]PostDiscoveryFilter(nil), r.postFilters...)
}

// ConfigurationParameters returns the request's configuration map.
func (r *DiscoveryRequest) ConfigurationParameters() engine.ConfigurationParameters {
	return r.config
}
