// Package declarative implements export, validation, diff, and apply of a
// whole declarative config document against a live gateway.
package declarative

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

// Metadata is the optional `_metadata` block stamped on export. It is
// write-only: loaders drop it so it never participates in validation,
// diffing, or apply.
type Metadata struct {
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Tool       string    `json:"tool" yaml:"tool"`
	Version    string    `json:"version" yaml:"version"`
	Checksum   string    `json:"checksum" yaml:"checksum"`
}

// Config is a declarative description of the gateway's desired state.
// A nil section means the document does not manage that entity type; an
// empty section means it manages the type and wants none of them.
type Config struct {
	Metadata  *Metadata       `json:"_metadata,omitempty" yaml:"_metadata,omitempty"`
	Services  []entity.Fields `json:"services,omitempty" yaml:"services,omitempty"`
	Routes    []entity.Fields `json:"routes,omitempty" yaml:"routes,omitempty"`
	Upstreams []entity.Fields `json:"upstreams,omitempty" yaml:"upstreams,omitempty"`
	Consumers []entity.Fields `json:"consumers,omitempty" yaml:"consumers,omitempty"`
	Plugins   []entity.Fields `json:"plugins,omitempty" yaml:"plugins,omitempty"`
}

// Entities returns the document's entries for one entity type.
func (c *Config) Entities(typ entity.Type) []entity.Fields {
	switch typ {
	case entity.TypeService:
		return c.Services
	case entity.TypeRoute:
		return c.Routes
	case entity.TypeUpstream:
		return c.Upstreams
	case entity.TypeConsumer:
		return c.Consumers
	case entity.TypePlugin:
		return c.Plugins
	default:
		return nil
	}
}

// SetEntities replaces the document's entries for one entity type.
func (c *Config) SetEntities(typ entity.Type, entries []entity.Fields) {
	switch typ {
	case entity.TypeService:
		c.Services = entries
	case entity.TypeRoute:
		c.Routes = entries
	case entity.TypeUpstream:
		c.Upstreams = entries
	case entity.TypeConsumer:
		c.Consumers = entries
	case entity.TypePlugin:
		c.Plugins = entries
	}
}

// Declares reports whether the document manages the given entity type.
// Managed-but-empty sections still count: applying such a document deletes
// every live entity of that type.
func (c *Config) Declares(typ entity.Type) bool {
	return c.Entities(typ) != nil
}

// Load reads a declarative config from a YAML or JSON file, chosen by
// extension. Any `_metadata` block is dropped.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read config file: %s", path), err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.NewFileUnmarshalError(path, "JSON", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.NewFileUnmarshalError(path, "YAML", err)
		}
	}

	cfg.Metadata = nil
	return &cfg, nil
}

// Save writes the config to a YAML or JSON file, stamping a fresh
// `_metadata` block with the tool identity and content checksum.
func (c *Config) Save(path, toolVersion string) error {
	checksum, err := c.Checksum()
	if err != nil {
		return err
	}
	c.Metadata = &Metadata{
		ExportedAt: time.Now().UTC(),
		Tool:       "sysops",
		Version:    toolVersion,
		Checksum:   checksum,
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal config", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("write config file: %s", path), err)
	}
	return nil
}

// Checksum computes the blake3 hash of the document's canonical JSON form.
// The `_metadata` block is excluded so re-exporting an unchanged gateway
// yields the same checksum.
func (c *Config) Checksum() (string, error) {
	canonical, err := canonicalJSON(c)
	if err != nil {
		return "", fmt.Errorf("canonicalize config: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash config: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

func canonicalJSON(c *Config) ([]byte, error) {
	doc := map[string]any{}
	for _, typ := range entity.DeclaredTypes() {
		entries := c.Entities(typ)
		if entries == nil {
			continue
		}
		// Stable entry order, keyed the same way diff matching is.
		sorted := make([]entity.Fields, len(entries))
		copy(sorted, entries)
		sort.Slice(sorted, func(i, j int) bool {
			return entryKey(sorted[i]) < entryKey(sorted[j])
		})

		items := make([]any, len(sorted))
		for i, fields := range sorted {
			items[i] = sortKeys(map[string]any(fields))
		}
		doc[string(typ)] = items
	}
	return json.Marshal(sortKeys(doc))
}

func entryKey(fields entity.Fields) string {
	return entity.Key(fields, "")
}

// sortKeys recursively sorts map keys for stable JSON output
func sortKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sorted := make(map[string]any, len(val))
		for _, k := range keys {
			sorted[k] = sortKeys(val[k])
		}
		return sorted

	case []any:
		for i, item := range val {
			val[i] = sortKeys(item)
		}
		return val

	default:
		return v
	}
}
