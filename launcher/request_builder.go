package launcher

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/crosstest/crosstest/engine"
)

// RequestBuilder accumulates selectors, filters, and configuration
// parameters for a DiscoveryRequest.
//
// Builder methods chain and never fail on the spot; malformed input is
// recorded and surfaced by Build, which reports every violation wrapped in
// ErrPreconditionViolation. Build copies the accumulated state out, so a
// builder can produce several independent requests and later mutation of the
// builder does not affect requests built earlier.
//
//	req, err := launcher.NewRequestBuilder().
//		Selectors(
//			engine.SelectPackage("example.users"),
//			engine.SelectClass("PaymentTests"),
//		).
//		Filters(
//			launcher.IncludeEngines("fakeunit"),
//			classNames, // engine.IncludeClassNamePatterns(".*Tests")
//		).
//		ConfigurationParameter("run.mode", "fast").
//		Build()
type RequestBuilder struct {
	selectors        []engine.DiscoverySelector
	engineFilters    []*EngineFilter
	discoveryFilters []engine.DiscoveryFilter
	postFilters      []PostDiscoveryFilter
	config           map[string]string
	errs             *multierror.Error
}

// NewRequestBuilder creates an empty builder.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{config: make(map[string]string)}
}

// Selectors adds selectors to the request in order. Nil and empty input is
// tolerated as a no-op. Selectors are never deduplicated, since their order
// and multiplicity may matter to engines that resolve incrementally.
func (b *RequestBuilder) Selectors(selectors ...engine.DiscoverySelector) *RequestBuilder {
	for _, s := range selectors {
		if s == nil {
			continue
		}
		if err := engine.ValidateSelector(s); err != nil {
			b.violation("invalid selector: %s", err)
			continue
		}
		b.selectors = append(b.selectors, s)
	}
	return b
}

// Filters adds filters to the request, routing each into the engine,
// discovery, or post-discovery bucket according to its role. A filter whose
// role matches none of the three recognized roles, or whose concrete type
// does not implement the Apply contract of its declared role, is rejected as
// a precondition violation naming the filter.
func (b *RequestBuilder) Filters(filters ...engine.Filter) *RequestBuilder {
	for _, f := range filters {
		b.storeFilter(f)
	}
	return b
}

func (b *RequestBuilder) storeFilter(f engine.Filter) {
	if f == nil {
		b.violation("filter must not be nil")
		return
	}
	switch f.Role() {
	case engine.FilterRoleEngine:
		ef, ok := f.(*EngineFilter)
		if !ok {
			b.violation("filter [%s] declares the engine role but is not an EngineFilter", f)
			return
		}
		b.engineFilters = append(b.engineFilters, ef)
	case engine.FilterRoleDiscovery:
		df, ok := f.(engine.DiscoveryFilter)
		if !ok {
			b.violation("filter [%s] declares the discovery role but does not implement DiscoveryFilter", f)
			return
		}
		b.discoveryFilters = append(b.discoveryFilters, df)
	case engine.FilterRolePostDiscovery:
		pf, ok := f.(PostDiscoveryFilter)
		if !ok {
			b.violation("filter [%s] declares the post-discovery role but does not implement PostDiscoveryFilter", f)
			return
		}
		b.postFilters = append(b.postFilters, pf)
	default:
		b.violation("filter [%s] must carry the engine, discovery, or post-discovery role", f)
	}
}

// ConfigurationParameter adds one configuration parameter. A blank key is a
// precondition violation; writing an existing key overwrites its value.
func (b *RequestBuilder) ConfigurationParameter(key, value string) *RequestBuilder {
	if strings.TrimSpace(key) == "" {
		b.violation("configuration parameter key must not be blank")
		return b
	}
	b.config[key] = value
	return b
}

// ConfigurationParameters adds all entries of the given map, with the same
// rules as ConfigurationParameter.
func (b *RequestBuilder) ConfigurationParameters(params map[string]string) *RequestBuilder {
	for k, v := range params {
		b.ConfigurationParameter(k, v)
	}
	return b
}

// ConfigurationParametersFile reads a YAML file containing a flat string
// map and adds its entries. Entries added later, from a file or directly,
// overwrite earlier ones.
func (b *RequestBuilder) ConfigurationParametersFile(path string) *RequestBuilder {
	data, err := os.ReadFile(path)
	if err != nil {
		b.violation("cannot read configuration parameters file: %s", err)
		return b
	}
	var params map[string]string
	if err := yaml.Unmarshal(data, &params); err != nil {
		b.violation("cannot parse configuration parameters file %q: %s", path, err)
		return b
	}
	return b.ConfigurationParameters(params)
}

// Build creates the immutable request from the builder's current contents.
// The builder remains usable afterwards; calling Build again yields another
// independent request with the same content. If any precondition violation
// was recorded, Build returns nil and an error wrapping
// ErrPreconditionViolation for every violation.
func (b *RequestBuilder) Build() (*DiscoveryRequest, error) {
	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &DiscoveryRequest{
		selectors:        append([]engine.DiscoverySelector(nil), b.selectors...),
		engineFilters:    append([]*EngineFilter(nil), b.engineFilters...),
		discoveryFilters: append([]engine.DiscoveryFilter(nil), b.discoveryFilters...),
		postFilters:      append([]PostDiscoveryFilter(nil), b.postFilters...),
		config:           engine.NewConfigurationParameters(b.config),
	}, nil
}

func (b *RequestBuilder) violation(format string, args ...interface{}) {
	b.errs = multierror.Append(b.errs,
		fmt.Errorf("%w: %s", ErrPreconditionViolation, fmt.Sprintf(format, args...)))
}
