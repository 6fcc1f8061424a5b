package engine

import "sort"

// ConfigurationParameters is a flat, immutable string-to-string map carried
// by a discovery request. The launcher passes it unchanged to every engine
// during both discovery and execution.
type ConfigurationParameters struct {
	values map[string]string
}

// NewConfigurationParameters copies the given map into an immutable value.
// Later changes to the source map have no effect.
func NewConfigurationParameters(values map[string]string) ConfigurationParameters {
	if len(values) == 0 {
		return ConfigurationParameters{}
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return ConfigurationParameters{values: copied}
}

// Get returns the value for a key and whether the key is present.
func (c ConfigurationParameters) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetOrDefault returns the value for a key, or fallback when absent.
func (c ConfigurationParameters) GetOrDefault(key, fallback string) string {
	if v, ok := c.values[key]; ok {
		return v
	}
	return fallback
}

// Size returns the number of parameters.
func (c ConfigurationParameters) Size() int { return len(c.values) }

// Keys returns all keys in sorted order.
func (c ConfigurationParameters) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsMap returns a copy of the underlying map.
func (c ConfigurationParameters) AsMap() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
