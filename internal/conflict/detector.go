package conflict

import (
	"github.com/Recipe-Web-App/system-operations-manager/internal/diff"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
)

// Detect matches entities across two lists by their stable key (name when
// present, otherwise id) and emits a Conflict for every matched pair whose
// drift set is non-empty.
//
// Entities present on only one side are not conflicts; they are pure
// creates or deletes handled directly by the apply phase.
func Detect(typ entity.Type, sourceList, targetList []entity.Snapshot, direction Direction, sourceSystemID, targetSystemID string) []Conflict {
	targets := make(map[string]entity.Snapshot, len(targetList))
	for _, snap := range targetList {
		targets[snap.Name()] = snap
	}

	var conflicts []Conflict
	for _, source := range sourceList {
		key := source.Name()
		target, ok := targets[key]
		if !ok {
			continue
		}

		drift := diff.DriftFields(typ, source.Fields, target.Fields)
		if len(drift) == 0 {
			continue
		}

		id := source.ID
		if id == "" {
			id = target.ID
		}

		conflicts = append(conflicts, Conflict{
			EntityType:     typ,
			EntityID:       id,
			EntityName:     key,
			SourceState:    source.Fields,
			TargetState:    target.Fields,
			DriftFields:    drift,
			SourceSystemID: sourceSystemID,
			TargetSystemID: targetSystemID,
			Direction:      direction,
		})
	}

	return conflicts
}
