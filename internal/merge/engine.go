// Package merge decides which drifted fields of a conflict can be merged
// automatically and validates merged candidates before they are written.
//
// The system tracks no common ancestor, only two current states, so
// auto-merge is conservative: without explicit per-field provenance every
// drifted field is treated as conflicting and the caller must select
// field values manually.
package merge

import (
	"sort"

	"github.com/Recipe-Web-App/system-operations-manager/internal/conflict"
	"github.com/Recipe-Web-App/system-operations-manager/internal/declarative"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/history"
)

// Analysis is the result of auto-merge computation for one conflict.
// Invariant: Mergeable is never true while ConflictingFields is non-empty.
type Analysis struct {
	Mergeable           bool          `json:"mergeable"`
	AutoMergeableFields []string      `json:"auto_mergeable_fields"`
	ConflictingFields   []string      `json:"conflicting_fields"`
	MergedPreview       entity.Fields `json:"merged_preview,omitempty"`
}

// ComputeAutoMerge classifies each drifted field of the conflict against
// the apply history's per-field provenance.
//
// With provenance, fields attributed to exactly one side are auto-merged
// by overlaying the source-attributed fields onto the target state; fields
// attributed to both sides conflict. Fields with no attribution at all are
// also treated as conflicting rather than silently picking a side.
//
// Without provenance, nothing is auto-mergeable.
func ComputeAutoMerge(c conflict.Conflict, prov *history.Provenance) Analysis {
	if prov == nil || (len(prov.SourceFields) == 0 && len(prov.TargetFields) == 0) {
		return Analysis{
			Mergeable:         false,
			ConflictingFields: append([]string(nil), c.DriftFields...),
		}
	}

	var auto, conflicting []string
	for _, field := range c.DriftFields {
		src := prov.SourceFields[field]
		tgt := prov.TargetFields[field]
		switch {
		case src && tgt:
			conflicting = append(conflicting, field)
		case src || tgt:
			auto = append(auto, field)
		default:
			conflicting = append(conflicting, field)
		}
	}
	sort.Strings(auto)
	sort.Strings(conflicting)

	analysis := Analysis{
		AutoMergeableFields: auto,
		ConflictingFields:   conflicting,
		Mergeable:           len(conflicting) == 0 && len(auto) > 0,
	}

	if analysis.Mergeable {
		merged := c.TargetState.Clone()
		for _, field := range auto {
			if prov.SourceFields[field] {
				merged[field] = c.SourceState[field]
			}
		}
		analysis.MergedPreview = merged
	}

	return analysis
}

// ValidationResult reports whether a merged candidate passes the same
// structural checks the declarative config manager applies.
type ValidationResult struct {
	Valid  bool
	Issues []declarative.ValidationIssue
}

// ValidateMergedState re-validates a merged candidate before it is ever
// written: required fields present, enums within allowed values, numeric
// ranges respected.
func ValidateMergedState(merged entity.Fields, typ entity.Type) ValidationResult {
	issues := declarative.ValidateEntity(typ, merged, "merged")
	return ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
	}
}
