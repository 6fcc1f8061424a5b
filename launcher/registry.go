package launcher

import (
	"fmt"
	"strings"

	"github.com/crosstest/crosstest/engine"
)

// EngineRegistry holds the test engines available to a launcher. It is
// populated once at process start, by the constructor or by explicit
// Register calls, and is read-only afterwards: concurrent discovery and
// execution requests share it without synchronization.
type EngineRegistry struct {
	engines []engine.TestEngine
	byID    map[string]engine.TestEngine
}

// NewEngineRegistry creates a registry containing the given engines, in
// order. Registration order is the order engines are asked to discover and
// execute.
func NewEngineRegistry(engines ...engine.TestEngine) (*EngineRegistry, error) {
	r := &EngineRegistry{byID: make(map[string]engine.TestEngine)}
	for _, e := range engines {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds one engine. Engine ids must be non-blank and unique.
// Register must not be called once the registry is in use by a launcher.
func (r *EngineRegistry) Register(e engine.TestEngine) error {
	if e == nil {
		return fmt.Errorf("engine must not be nil")
	}
	id := e.ID()
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("engine id must not be blank")
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("duplicate engine id %q", id)
	}
	r.byID[id] = e
	r.engines = append(r.engines, e)
	return nil
}

// Engines returns all registered engines in registration order.
func (r *EngineRegistry) Engines() []engine.TestEngine {
	return append([]engine.TestEngine(nil), r.engines...)
}

// Lookup returns the engine with the given id, if registered.
func (r *EngineRegistry) Lookup(id string) (engine.TestEngine, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// EligibleEngines returns the ordered subset of engines accepted by every
// engine filter on the request. For each engine, include filters are
// evaluated before exclude filters, so an exclusion always wins over an
// inclusion of the same engine.
func (r *EngineRegistry) EligibleEngines(request *DiscoveryRequest) []engine.TestEngine {
	filters := request.EngineFilters()
	ordered := make([]*EngineFilter, 0, len(filters))
	for _, f := range filters {
		if f.IsInclude() {
			ordered = append(ordered, f)
		}
	}
	for _, f := range filters {
		if !f.IsInclude() {
			ordered = append(ordered, f)
		}
	}

	var eligible []engine.TestEngine
	for _, e := range r.engines {
		accepted := true
		for _, f := range ordered {
			if f.Apply(e.ID()).IsExcluded() {
				accepted = false
				break
			}
		}
		if accepted {
			eligible = append(eligible, e)
		}
	}
	return eligible
}
