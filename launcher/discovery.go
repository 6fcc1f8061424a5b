package launcher

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/crosstest/crosstest/engine"
	"github.com/crosstest/crosstest/logging"
)

// discoverPlan runs the discovery pipeline: resolve the request with every
// eligible engine in registry order, prune each contribution with the
// post-discovery filters, and index the surviving roots into a plan.
//
// A failing engine contributes nothing but never aborts discovery for the
// other engines; all per-engine failures are aggregated into the returned
// error alongside a valid plan.
func discoverPlan(
	registry *EngineRegistry,
	request *DiscoveryRequest,
	logger logging.Logger,
) (*TestPlan, error) {
	var errs *multierror.Error
	var contributions []engineContribution

	postFilters := request.PostDiscoveryFilters()
	for _, eng := range registry.EligibleEngines(request) {
		root, err := discoverWithEngine(eng, request)
		if err != nil {
			logger.Printf("engine %q: discovery failed: %s", eng.ID(), err)
			errs = multierror.Append(errs, fmt.Errorf("engine %q: %w", eng.ID(), err))
			continue
		}
		if root == nil {
			logger.Printf("engine %q contributed nothing", eng.ID())
			continue
		}
		root = applyPostDiscoveryFilters(root, postFilters)
		if root == nil || emptyEngineRoot(root) {
			logger.Printf("engine %q: no nodes left after filtering", eng.ID())
			continue
		}
		contributions = append(contributions, engineContribution{engine: eng, root: root})
	}

	plan, planErrs := buildPlan(contributions, request.ConfigurationParameters(), logger)
	errs = multierror.Append(errs, planErrs)
	return plan, errs.ErrorOrNil()
}

// discoverWithEngine invokes one engine's discovery operation and validates
// its contribution. A panicking engine is treated like a failing one.
func discoverWithEngine(
	eng engine.TestEngine,
	request *DiscoveryRequest,
) (root *engine.TestDescriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			root, err = nil, fmt.Errorf("discovery panicked: %v", r)
		}
	}()
	root, err = eng.Discover(request)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	expected := engine.NewEngineUniqueID(eng.ID())
	if !root.UniqueID().Equals(expected) {
		return nil, fmt.Errorf("root id %q does not match expected %q", root.UniqueID(), expected)
	}
	return root, nil
}

// applyPostDiscoveryFilters prunes one engine's tree bottom-up: a node
// survives if it passes every filter or if at least one descendant survives,
// so the result never contains a container whose whole subtree was excluded.
func applyPostDiscoveryFilters(
	root *engine.TestDescriptor,
	filters []PostDiscoveryFilter,
) *engine.TestDescriptor {
	if len(filters) == 0 {
		return root
	}
	return root.Prune(func(d *engine.TestDescriptor) bool {
		for _, f := range filters {
			if f.Apply(d).IsExcluded() {
				return false
			}
		}
		return true
	})
}

// emptyEngineRoot reports whether an engine root is a childless container.
// Such roots carry no executable content and are left out of the plan.
func emptyEngineRoot(root *engine.TestDescriptor) bool {
	return !root.Type().IsTest() && len(root.Children()) == 0
}

// buildPlan indexes the contributions, dropping any whose subtree violates
// the global unique-id invariant. The remaining contributions still form a
// valid plan.
func buildPlan(
	contributions []engineContribution,
	config engine.ConfigurationParameters,
	logger logging.Logger,
) (*TestPlan, *multierror.Error) {
	var errs *multierror.Error
	for {
		plan, err := newTestPlan(contributions, config)
		if err == nil {
			return plan, errs
		}
		// Identify and drop the offending contribution, then retry with the
		// rest so one misbehaving engine cannot poison the whole plan.
		dropped := false
		for i, c := range contributions {
			if _, buildErr := newTestPlan(contributions[i:i+1], config); buildErr != nil {
				logger.Printf("engine %q: contribution discarded: %s", c.engine.ID(), buildErr)
				errs = multierror.Append(errs, fmt.Errorf("engine %q: %w", c.engine.ID(), buildErr))
				contributions = append(append([]engineContribution(nil),
					contributions[:i]...), contributions[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			// Should not happen: every subtree is internally consistent but
			// the merge failed. Report and return an empty plan.
			errs = multierror.Append(errs, err)
			plan, _ := newTestPlan(nil, config)
			return plan, errs
		}
	}
}
