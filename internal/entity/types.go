// Package entity defines the gateway entity model shared by the diff,
// conflict, merge, and declarative layers.
package entity

import "sort"

// Type identifies a gateway entity category. Values match the top-level
// keys of a declarative config document and the admin API collection paths.
type Type string

const (
	// TypeService is an upstream-facing service definition
	TypeService Type = "services"
	// TypeRoute is a request-matching rule attached to a service
	TypeRoute Type = "routes"
	// TypeUpstream is a load-balancing virtual hostname
	TypeUpstream Type = "upstreams"
	// TypeConsumer is an API consumer identity
	TypeConsumer Type = "consumers"
	// TypePlugin is a behavior extension scoped globally or to another entity
	TypePlugin Type = "plugins"
	// TypeTarget is a backend address belonging to an upstream
	TypeTarget Type = "targets"
)

// Fields is the generic field map of one entity as returned by either system.
type Fields map[string]any

// Clone returns a shallow copy of the field map. Nested values are shared;
// callers treat snapshots as immutable once captured.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the sorted field names present in the map.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot is a point-in-time view of one entity from one system.
// Immutable once captured.
type Snapshot struct {
	Type   Type   `json:"entity_type" yaml:"entity_type"`
	ID     string `json:"entity_id" yaml:"entity_id"`
	Fields Fields `json:"fields" yaml:"fields"`
}

// Name returns the entity's human-readable name, falling back to its id.
func (s Snapshot) Name() string {
	return Key(s.Fields, s.ID)
}

// Key returns the stable matching key for an entity: name when present,
// otherwise the id. Consumers are keyed by username.
func Key(fields Fields, id string) string {
	if name, ok := fields["name"].(string); ok && name != "" {
		return name
	}
	if username, ok := fields["username"].(string); ok && username != "" {
		return username
	}
	return id
}
