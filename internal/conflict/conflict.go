// Package conflict detects drift between two entity lists and tracks the
// per-run resolution state for each detected conflict.
package conflict

import (
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

// Direction indicates which way a sync run flows.
type Direction string

const (
	// DirectionPush syncs the local gateway's state outward.
	DirectionPush Direction = "push"
	// DirectionPull syncs the remote state inward.
	DirectionPull Direction = "pull"
)

// Action is the operator's decision for one conflict.
type Action string

const (
	// KeepSource writes the source state to the target system.
	KeepSource Action = "KEEP_SOURCE"
	// KeepTarget leaves the target system untouched.
	KeepTarget Action = "KEEP_TARGET"
	// Skip excludes the entity from this run entirely.
	Skip Action = "SKIP"
	// Merge writes an operator- or engine-produced merged state.
	Merge Action = "MERGE"
)

// Conflict is one entity whose normalized states differ between the two
// systems. Immutable once detected.
type Conflict struct {
	EntityType     entity.Type   `json:"entity_type"`
	EntityID       string        `json:"entity_id"`
	EntityName     string        `json:"entity_name"`
	SourceState    entity.Fields `json:"source_state"`
	TargetState    entity.Fields `json:"target_state"`
	DriftFields    []string      `json:"drift_fields"`
	SourceSystemID string        `json:"source_system_id"`
	TargetSystemID string        `json:"target_system_id"`
	Direction      Direction     `json:"direction"`
}

// Resolution pairs a conflict with the action chosen for it. A MERGE
// resolution must carry a merged state.
type Resolution struct {
	Conflict    Conflict      `json:"conflict"`
	Action      Action        `json:"action"`
	MergedState entity.Fields `json:"merged_state,omitempty"`
}

// Validate checks the Resolution invariant: MERGE requires a merged state.
func (r Resolution) Validate() error {
	if r.Action == Merge && r.MergedState == nil {
		return errors.NewMergeStateMissingError(r.Conflict.EntityID)
	}
	return nil
}

// DesiredState returns the state this resolution writes, or nil when the
// resolution performs no write (KEEP_TARGET, SKIP).
func (r Resolution) DesiredState() entity.Fields {
	switch r.Action {
	case KeepSource:
		return r.Conflict.SourceState
	case Merge:
		return r.MergedState
	default:
		return nil
	}
}

// DefaultResolution returns the policy resolution for a conflict:
// KEEP_SOURCE on push, KEEP_TARGET on pull.
func DefaultResolution(c Conflict) Resolution {
	action := KeepTarget
	if c.Direction == DirectionPush {
		action = KeepSource
	}
	return Resolution{Conflict: c, Action: action}
}
