// Package diff implements field-level comparison between two entity
// snapshots. Comparison is symmetric: neither side is privileged, and the
// same normalization rules apply to both.
package diff

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
)

// DriftFields returns the ordered set of field names present in either map
// whose normalized values differ. Server-managed fields are always
// excluded; extra field names to ignore may be supplied.
//
// Normalization applies the entity type's declared defaults to absent or
// null fields, compares unordered list fields as sets, compares ordered
// list fields as sequences, and upper-cases case-insensitive fields
// (HTTP methods) before comparison.
func DriftFields(typ entity.Type, source, target entity.Fields, ignore ...string) []string {
	schema, _ := entity.SchemaFor(typ)

	skip := make(map[string]bool, len(entity.ServerManagedFields)+len(ignore))
	for _, f := range entity.ServerManagedFields {
		skip[f] = true
	}
	for _, f := range ignore {
		skip[f] = true
	}

	union := make(map[string]bool, len(source)+len(target))
	for k := range source {
		union[k] = true
	}
	for k := range target {
		union[k] = true
	}

	var drift []string
	for field := range union {
		if skip[field] {
			continue
		}
		sv := Normalize(schema, field, source[field])
		tv := Normalize(schema, field, target[field])
		if !reflect.DeepEqual(sv, tv) {
			drift = append(drift, field)
		}
	}

	sort.Strings(drift)
	return drift
}

// Normalize canonicalizes one field value for comparison under the given
// schema. Nil values take the field's declared default before
// canonicalization.
func Normalize(schema entity.Schema, field string, value any) any {
	if value == nil {
		if def, ok := schema.Defaults[field]; ok {
			value = def
		}
	}
	return canonicalize(value, listKind(schema, field), caseInsensitive(schema, field))
}

type kind int

const (
	kindPlain kind = iota
	kindUnordered
	kindOrdered
)

func listKind(schema entity.Schema, field string) kind {
	for _, f := range schema.Unordered {
		if f == field {
			return kindUnordered
		}
	}
	for _, f := range schema.Ordered {
		if f == field {
			return kindOrdered
		}
	}
	return kindPlain
}

func caseInsensitive(schema entity.Schema, field string) bool {
	for _, f := range schema.CaseInsensitive {
		if f == field {
			return true
		}
	}
	return false
}

// canonicalize reduces a value to a comparable shape: numbers collapse to
// float64 (YAML yields int, JSON yields float64 for the same document),
// lists become []any, and unordered lists are sorted by their rendered
// elements.
func canonicalize(value any, k kind, upper bool) any {
	switch v := value.(type) {
	case nil:
		return nil
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case string:
		if upper {
			return strings.ToUpper(v)
		}
		return v
	case bool:
		return v
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return canonicalize(items, k, upper)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = canonicalize(item, kindPlain, upper)
		}
		if k == kindUnordered {
			sort.Slice(items, func(i, j int) bool {
				return fmt.Sprint(items[i]) < fmt.Sprint(items[j])
			})
		}
		return items
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = canonicalize(item, kindPlain, false)
		}
		return out
	case entity.Fields:
		return canonicalize(map[string]any(v), kindPlain, false)
	default:
		return fmt.Sprint(v)
	}
}

// FieldChange records the old and new rendered values of one drifted field.
type FieldChange struct {
	Field string `json:"field" yaml:"field"`
	Old   string `json:"old" yaml:"old"`
	New   string `json:"new" yaml:"new"`
}

// Changes renders the drifted fields between an old and a new state as
// field-level pairs, in drift order, honoring the same extra ignores as
// DriftFields. Used by config diff summaries and by the presentational
// renderers; never by resolution logic.
func Changes(typ entity.Type, oldState, newState entity.Fields, ignore ...string) []FieldChange {
	fields := DriftFields(typ, oldState, newState, ignore...)
	changes := make([]FieldChange, 0, len(fields))
	for _, f := range fields {
		changes = append(changes, FieldChange{
			Field: f,
			Old:   renderValue(oldState[f]),
			New:   renderValue(newState[f]),
		})
	}
	return changes
}

func renderValue(v any) string {
	if v == nil {
		return "<absent>"
	}
	return fmt.Sprint(v)
}
