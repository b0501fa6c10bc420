package declarative

import (
	"fmt"
	"strings"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
)

// ValidationIssue is one problem found in a config document.
type ValidationIssue struct {
	Path       string      `json:"path" yaml:"path"`
	Message    string      `json:"message" yaml:"message"`
	EntityType entity.Type `json:"entity_type" yaml:"entity_type"`
	EntityName string      `json:"entity_name" yaml:"entity_name"`
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// ValidationResult aggregates every issue found in one pass. Errors are
// collected rather than fail-fast so a single run reports every problem.
type ValidationResult struct {
	Valid    bool              `json:"valid" yaml:"valid"`
	Errors   []ValidationIssue `json:"errors" yaml:"errors"`
	Warnings []ValidationIssue `json:"warnings" yaml:"warnings"`
}

// ValidateConfig checks every entity against its schema and verifies
// referential integrity within the document.
func ValidateConfig(cfg *Config) ValidationResult {
	result := ValidationResult{}

	for _, typ := range entity.DeclaredTypes() {
		for i, fields := range cfg.Entities(typ) {
			path := fmt.Sprintf("%s[%d]", typ, i)
			result.Errors = append(result.Errors, ValidateEntity(typ, fields, path)...)
		}
	}

	result.Errors = append(result.Errors, checkReferences(cfg, &result)...)
	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateEntity runs the structural checks for one entity: required
// fields present, enum membership, and numeric ranges. The merge engine
// re-runs these same checks on every merged candidate before it is
// written.
func ValidateEntity(typ entity.Type, fields entity.Fields, path string) []ValidationIssue {
	schema, ok := entity.SchemaFor(typ)
	if !ok {
		return []ValidationIssue{{
			Path:       path,
			Message:    fmt.Sprintf("unknown entity type %q", typ),
			EntityType: typ,
		}}
	}

	name := entity.Key(fields, "")
	var issues []ValidationIssue
	add := func(field, msg string) {
		issues = append(issues, ValidationIssue{
			Path:       path + "." + field,
			Message:    msg,
			EntityType: typ,
			EntityName: name,
		})
	}

	for _, field := range schema.Required {
		v, present := fields[field]
		if !present || v == nil {
			add(field, fmt.Sprintf("required field %q is missing", field))
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			add(field, fmt.Sprintf("required field %q is empty", field))
		}
	}

	for field, allowed := range schema.Enums {
		v, present := fields[field]
		if !present || v == nil {
			continue
		}
		s, isStr := v.(string)
		if !isStr || !contains(allowed, s) {
			add(field, fmt.Sprintf("value %v is not one of %s", v, strings.Join(allowed, ", ")))
		}
	}

	for field, bounds := range schema.Ranges {
		v, present := fields[field]
		if !present || v == nil {
			continue
		}
		n, isNum := asInt(v)
		if !isNum {
			add(field, fmt.Sprintf("value %v is not a number", v))
			continue
		}
		if n < bounds.Min || n > bounds.Max {
			add(field, fmt.Sprintf("value %d is outside the range %d..%d", n, bounds.Min, bounds.Max))
		}
	}

	return issues
}

// checkReferences verifies that every cross-reference resolves within the
// document. A reference into a section the document does not manage at all
// could validly point at a live entity, so it is downgraded to a warning;
// route→service is structural and always a hard error.
func checkReferences(cfg *Config, result *ValidationResult) []ValidationIssue {
	names := map[entity.Type]map[string]bool{}
	for _, typ := range entity.DeclaredTypes() {
		names[typ] = map[string]bool{}
		for _, fields := range cfg.Entities(typ) {
			if key := entity.Key(fields, ""); key != "" {
				names[typ][key] = true
			}
		}
	}

	var hardErrors []ValidationIssue
	for _, typ := range entity.DeclaredTypes() {
		schema, _ := entity.SchemaFor(typ)
		if len(schema.References) == 0 {
			continue
		}

		for i, fields := range cfg.Entities(typ) {
			for field, refType := range schema.References {
				refName, ok := referenceName(fields[field])
				if !ok || refName == "" {
					continue
				}
				if names[refType][refName] {
					continue
				}

				issue := ValidationIssue{
					Path:       fmt.Sprintf("%s[%d].%s", typ, i, field),
					Message:    fmt.Sprintf("references %s %q which is not in this document", refType, refName),
					EntityType: typ,
					EntityName: refName,
				}

				if typ == entity.TypeRoute && field == "service" {
					hardErrors = append(hardErrors, issue)
					continue
				}
				if !cfg.Declares(refType) {
					result.Warnings = append(result.Warnings, issue)
					continue
				}
				hardErrors = append(hardErrors, issue)
			}
		}
	}

	return hardErrors
}

// referenceName extracts the referenced entity's name from either a plain
// string or a nested {"name": ...} / {"id": ...} object.
func referenceName(v any) (string, bool) {
	switch ref := v.(type) {
	case nil:
		return "", false
	case string:
		return ref, true
	case map[string]any:
		if name, ok := ref["name"].(string); ok {
			return name, true
		}
		if id, ok := ref["id"].(string); ok {
			return id, true
		}
		return "", false
	case entity.Fields:
		return referenceName(map[string]any(ref))
	default:
		return "", false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	default:
		return 0, false
	}
}
