package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Recipe-Web-App/system-operations-manager/internal/conflict"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/history"
)

func driftedConflict() conflict.Conflict {
	return conflict.Conflict{
		EntityType:  entity.TypeService,
		EntityID:    "s1",
		EntityName:  "billing",
		SourceState: entity.Fields{"name": "billing", "host": "a.com", "retries": 3, "port": 80},
		TargetState: entity.Fields{"name": "billing", "host": "b.com", "retries": 5, "port": 80},
		DriftFields: []string{"host", "retries"},
		Direction:   conflict.DirectionPush,
	}
}

func TestComputeAutoMergeWithoutProvenance(t *testing.T) {
	c := driftedConflict()

	analysis := ComputeAutoMerge(c, nil)

	assert.False(t, analysis.Mergeable)
	assert.Empty(t, analysis.AutoMergeableFields)
	assert.Equal(t, []string{"host", "retries"}, analysis.ConflictingFields)
	assert.Nil(t, analysis.MergedPreview)
}

func TestComputeAutoMergeEmptyProvenanceIsConservative(t *testing.T) {
	analysis := ComputeAutoMerge(driftedConflict(), &history.Provenance{})
	assert.False(t, analysis.Mergeable)
	assert.Equal(t, []string{"host", "retries"}, analysis.ConflictingFields)
}

func TestComputeAutoMergeDisjointSides(t *testing.T) {
	c := driftedConflict()
	prov := &history.Provenance{
		SourceFields: map[string]bool{"host": true},
		TargetFields: map[string]bool{"retries": true},
	}

	analysis := ComputeAutoMerge(c, prov)

	require.True(t, analysis.Mergeable)
	assert.Equal(t, []string{"host", "retries"}, analysis.AutoMergeableFields)
	assert.Empty(t, analysis.ConflictingFields)

	// Source-attributed fields overlay the target state.
	assert.Equal(t, "a.com", analysis.MergedPreview["host"])
	// Target-attributed fields keep the target's value.
	assert.Equal(t, 5, analysis.MergedPreview["retries"])
	// Undrifted fields are untouched.
	assert.Equal(t, 80, analysis.MergedPreview["port"])
}

func TestComputeAutoMergeOverlappingSides(t *testing.T) {
	c := driftedConflict()
	prov := &history.Provenance{
		SourceFields: map[string]bool{"host": true, "retries": true},
		TargetFields: map[string]bool{"retries": true},
	}

	analysis := ComputeAutoMerge(c, prov)

	assert.False(t, analysis.Mergeable, "a field written on both sides blocks auto-merge")
	assert.Equal(t, []string{"retries"}, analysis.ConflictingFields)
	assert.Equal(t, []string{"host"}, analysis.AutoMergeableFields)
	assert.Nil(t, analysis.MergedPreview)
}

func TestComputeAutoMergeUnattributedFieldConflicts(t *testing.T) {
	c := driftedConflict()
	prov := &history.Provenance{
		SourceFields: map[string]bool{"host": true},
		TargetFields: map[string]bool{},
	}

	analysis := ComputeAutoMerge(c, prov)

	assert.False(t, analysis.Mergeable)
	assert.Equal(t, []string{"retries"}, analysis.ConflictingFields,
		"drifted fields with no attribution must not be silently merged")
}

// The engine must never report mergeable alongside conflicting fields.
func TestMergeableNeverCoexistsWithConflicts(t *testing.T) {
	c := driftedConflict()
	provs := []*history.Provenance{
		nil,
		{},
		{SourceFields: map[string]bool{"host": true}},
		{SourceFields: map[string]bool{"host": true, "retries": true},
			TargetFields: map[string]bool{"host": true, "retries": true}},
		{SourceFields: map[string]bool{"host": true},
			TargetFields: map[string]bool{"retries": true}},
	}

	for _, prov := range provs {
		analysis := ComputeAutoMerge(c, prov)
		if len(analysis.ConflictingFields) > 0 {
			assert.False(t, analysis.Mergeable)
		}
	}
}

func TestValidateMergedState(t *testing.T) {
	valid := ValidateMergedState(entity.Fields{
		"name": "billing", "host": "a.com", "port": 443, "protocol": "https",
	}, entity.TypeService)
	assert.True(t, valid.Valid)
	assert.Empty(t, valid.Issues)

	invalid := ValidateMergedState(entity.Fields{
		"name": "billing", "host": "a.com", "port": 70_000, "protocol": "carrier-pigeon",
	}, entity.TypeService)
	assert.False(t, invalid.Valid)
	assert.Len(t, invalid.Issues, 2)
}

func TestValidateMergedStateMissingRequired(t *testing.T) {
	result := ValidateMergedState(entity.Fields{"name": "billing"}, entity.TypeService)
	require.False(t, result.Valid)
	assert.Contains(t, result.Issues[0].Message, "host")
}
