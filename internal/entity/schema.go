package entity

// Range bounds a numeric field.
type Range struct {
	Min int
	Max int
}

// Schema carries the static field knowledge for one entity type: defaults
// applied before comparison, ordering semantics, constraint checks, and
// cross-entity reference fields. All of this is compile-time knowledge;
// nothing is discovered from a live system.
type Schema struct {
	Type Type

	// Required fields must be present and non-empty.
	Required []string

	// Defaults substitute for absent or null fields during comparison
	// and validation.
	Defaults Fields

	// Unordered fields hold lists compared as sets (tags, hosts).
	Unordered []string

	// Ordered fields hold lists compared as sequences (paths, methods).
	Ordered []string

	// CaseInsensitive fields are upper-cased before comparison
	// (HTTP methods).
	CaseInsensitive []string

	// Enums restricts a field to a fixed value set.
	Enums map[string][]string

	// Ranges bounds numeric fields (ports, timeouts).
	Ranges map[string]Range

	// References maps a field name to the entity type it points at.
	References map[string]Type

	// Credentials are secret-bearing fields omitted from exports unless
	// explicitly requested.
	Credentials []string
}

// ServerManagedFields are set by the backend and never participate in
// drift detection.
var ServerManagedFields = []string{"id", "created_at", "updated_at"}

var timeoutRange = Range{Min: 1, Max: 3_600_000}

var schemas = map[Type]Schema{
	TypeService: {
		Type:     TypeService,
		Required: []string{"name", "host"},
		Defaults: Fields{
			"port":            80,
			"protocol":        "http",
			"retries":         5,
			"connect_timeout": 60_000,
			"write_timeout":   60_000,
			"read_timeout":    60_000,
		},
		Unordered: []string{"tags"},
		Enums: map[string][]string{
			"protocol": {"http", "https", "grpc", "grpcs", "tcp", "tls", "udp"},
		},
		Ranges: map[string]Range{
			"port":            {Min: 1, Max: 65_535},
			"retries":         {Min: 0, Max: 32_767},
			"connect_timeout": timeoutRange,
			"write_timeout":   timeoutRange,
			"read_timeout":    timeoutRange,
		},
	},
	TypeRoute: {
		Type:     TypeRoute,
		Required: []string{"name"},
		Defaults: Fields{
			"protocols":                  []any{"http", "https"},
			"strip_path":                 true,
			"preserve_host":              false,
			"regex_priority":             0,
			"path_handling":              "v0",
			"https_redirect_status_code": 426,
		},
		Unordered:       []string{"tags", "hosts", "protocols", "snis"},
		Ordered:         []string{"paths", "methods"},
		CaseInsensitive: []string{"methods"},
		Enums: map[string][]string{
			"path_handling": {"v0", "v1"},
		},
		Ranges: map[string]Range{
			"regex_priority":             {Min: 0, Max: 1_000_000},
			"https_redirect_status_code": {Min: 300, Max: 599},
		},
		References: map[string]Type{
			"service": TypeService,
		},
	},
	TypeUpstream: {
		Type:     TypeUpstream,
		Required: []string{"name"},
		Defaults: Fields{
			"algorithm":     "round-robin",
			"slots":         10_000,
			"hash_on":       "none",
			"hash_fallback": "none",
		},
		Unordered: []string{"tags"},
		Enums: map[string][]string{
			"algorithm":     {"round-robin", "consistent-hashing", "least-connections", "latency"},
			"hash_on":       {"none", "consumer", "ip", "header", "cookie", "path"},
			"hash_fallback": {"none", "consumer", "ip", "header", "cookie", "path"},
		},
		Ranges: map[string]Range{
			"slots": {Min: 10, Max: 65_536},
		},
	},
	TypeConsumer: {
		Type:      TypeConsumer,
		Required:  []string{"username"},
		Defaults:  Fields{},
		Unordered: []string{"tags"},
		Credentials: []string{
			"keyauth_credentials",
			"basicauth_credentials",
			"jwt_secrets",
			"hmacauth_credentials",
			"oauth2_credentials",
		},
	},
	TypePlugin: {
		Type:     TypePlugin,
		Required: []string{"name"},
		Defaults: Fields{
			"enabled":   true,
			"protocols": []any{"grpc", "grpcs", "http", "https"},
		},
		Unordered: []string{"tags", "protocols"},
		References: map[string]Type{
			"service":  TypeService,
			"route":    TypeRoute,
			"consumer": TypeConsumer,
		},
	},
	TypeTarget: {
		Type:     TypeTarget,
		Required: []string{"target"},
		Defaults: Fields{
			"weight": 100,
		},
		Unordered: []string{"tags"},
		Ranges: map[string]Range{
			"weight": {Min: 0, Max: 65_535},
		},
		References: map[string]Type{
			"upstream": TypeUpstream,
		},
	},
}

// createOrder sequences creates so referenced types exist before their
// dependents. Deletes run in the reverse order.
var createOrder = []Type{
	TypeService,
	TypeUpstream,
	TypeConsumer,
	TypeRoute,
	TypeTarget,
	TypePlugin,
}

// SchemaFor returns the static schema for an entity type.
func SchemaFor(t Type) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// CreateOrder returns entity types in dependency order for creates
// and updates.
func CreateOrder() []Type {
	out := make([]Type, len(createOrder))
	copy(out, createOrder)
	return out
}

// DeleteOrder returns entity types in reverse dependency order.
func DeleteOrder() []Type {
	out := make([]Type, len(createOrder))
	for i, t := range createOrder {
		out[len(createOrder)-1-i] = t
	}
	return out
}

// DeclaredTypes returns the entity types a declarative config document
// may carry at its top level.
func DeclaredTypes() []Type {
	return []Type{TypeService, TypeRoute, TypeUpstream, TypeConsumer, TypePlugin}
}

// IsServerManaged reports whether the field is maintained by the backend.
func IsServerManaged(field string) bool {
	for _, f := range ServerManagedFields {
		if f == field {
			return true
		}
	}
	return false
}
