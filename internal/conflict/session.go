package conflict

import (
	"fmt"

	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

// Session owns the resolution state for one reconciliation run. It is
// constructed per invocation and threaded through the call chain; it is
// never shared across runs and never package-level state. Discarding the
// session discards every resolution in it.
type Session struct {
	conflicts   []Conflict
	resolutions map[string]Resolution
}

// NewSession creates a resolution session over the detected conflicts.
func NewSession(conflicts []Conflict) *Session {
	return &Session{
		conflicts:   conflicts,
		resolutions: make(map[string]Resolution, len(conflicts)),
	}
}

// Conflicts returns the session's conflicts in detection order.
func (s *Session) Conflicts() []Conflict {
	return s.conflicts
}

// SetResolution records a resolution, keyed by the conflict's entity id.
// Setting a resolution for an already-resolved conflict replaces the
// earlier one; last write wins.
func (s *Session) SetResolution(r Resolution) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Conflict.EntityID == "" {
		return fmt.Errorf("resolution has no entity id")
	}
	s.resolutions[r.Conflict.EntityID] = r
	return nil
}

// Resolution returns the recorded resolution for an entity id, if any.
func (s *Session) Resolution(entityID string) (Resolution, bool) {
	r, ok := s.resolutions[entityID]
	return r, ok
}

// AllResolutions returns the recorded resolutions in original conflict
// order. Unresolved conflicts are absent from the result.
func (s *Session) AllResolutions() []Resolution {
	out := make([]Resolution, 0, len(s.resolutions))
	for _, c := range s.conflicts {
		if r, ok := s.resolutions[c.EntityID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Unresolved returns the conflicts that have no resolution yet, in
// original order.
func (s *Session) Unresolved() []Conflict {
	var out []Conflict
	for _, c := range s.conflicts {
		if _, ok := s.resolutions[c.EntityID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// ResolveRemaining applies one action to every still-unresolved conflict
// without touching already-resolved entries. It returns the number of
// conflicts resolved. MERGE is rejected: a batch cannot supply per-entity
// merged states.
func (s *Session) ResolveRemaining(action Action) (int, error) {
	if action == Merge {
		return 0, fmt.Errorf("MERGE cannot be applied as a batch action")
	}

	count := 0
	for _, c := range s.Unresolved() {
		s.resolutions[c.EntityID] = Resolution{Conflict: c, Action: action}
		count++
	}
	return count, nil
}

// ResolveDefaults applies the direction-based default policy to every
// still-unresolved conflict.
func (s *Session) ResolveDefaults() int {
	count := 0
	for _, c := range s.Unresolved() {
		s.resolutions[c.EntityID] = DefaultResolution(c)
		count++
	}
	return count
}

// Gate is the apply-phase precondition: it fails when any in-scope
// conflict lacks a resolution, preventing silent skips.
func (s *Session) Gate() error {
	if unresolved := s.Unresolved(); len(unresolved) > 0 {
		return errors.NewConflictUnresolvedError(len(unresolved))
	}
	return nil
}
