package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Recipe-Web-App/system-operations-manager/internal/conflict"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/merge"
)

func testConflicts() []conflict.Conflict {
	return []conflict.Conflict{
		{
			EntityType:  entity.TypeService,
			EntityID:    "s1",
			EntityName:  "billing",
			SourceState: entity.Fields{"name": "billing", "host": "a.com"},
			TargetState: entity.Fields{"name": "billing", "host": "b.com"},
			DriftFields: []string{"host"},
			Direction:   conflict.DirectionPush,
		},
		{
			EntityType:  entity.TypeRoute,
			EntityID:    "r1",
			EntityName:  "billing-route",
			SourceState: entity.Fields{"name": "billing-route", "paths": []any{"/v1"}},
			TargetState: entity.Fields{"name": "billing-route", "paths": []any{"/v2"}},
			DriftFields: []string{"paths"},
			Direction:   conflict.DirectionPush,
		},
	}
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tea.Model, keys ...string) ResolverModel {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	rm, ok := m.(ResolverModel)
	require.True(t, ok)
	return rm
}

func TestResolverResolvesAndAdvances(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	m := update(t, NewResolver(session), "s")

	r, ok := session.Resolution("s1")
	require.True(t, ok)
	assert.Equal(t, conflict.KeepSource, r.Action)

	// Cursor advanced to the remaining unresolved conflict.
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, ScreenConflictList, m.nav.Current())
}

func TestResolverOpensConfirmWhenAllResolved(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	m := update(t, NewResolver(session), "s", "t")

	require.NoError(t, session.Gate())
	assert.Equal(t, ScreenConfirm, m.nav.Current())

	m = update(t, m, "y")
	assert.True(t, m.Completed())
	assert.False(t, m.Aborted())
}

func TestResolverAbortDiscardsNothingButMarksAborted(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	m := update(t, NewResolver(session), "s", "q")

	assert.True(t, m.Aborted())
	assert.False(t, m.Completed())
	// The caller must check Aborted and not apply the session.
	assert.Error(t, session.Gate())
}

func TestResolverCtrlCAborts(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	model, _ := NewResolver(session).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m := model.(ResolverModel)
	assert.True(t, m.Aborted())
}

func TestResolverSkip(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	update(t, NewResolver(session), "x")

	r, ok := session.Resolution("s1")
	require.True(t, ok)
	assert.Equal(t, conflict.Skip, r.Action)
}

func TestResolverMergeRequiresMergeableAnalysis(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	m := update(t, NewResolver(session), "m")

	_, resolved := session.Resolution("s1")
	assert.False(t, resolved)
	assert.Equal(t, ScreenConflictList, m.nav.Current())
	assert.Contains(t, m.status, "no auto-merge")
}

func TestResolverMergeFlow(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	analyses := map[string]merge.Analysis{
		"s1": {
			Mergeable:           true,
			AutoMergeableFields: []string{"host"},
			MergedPreview:       entity.Fields{"name": "billing", "host": "a.com"},
		},
	}

	m := update(t, NewResolver(session, WithAnalyses(analyses)), "m")
	assert.Equal(t, ScreenMergePreview, m.nav.Current())

	m = update(t, m, "y")
	r, ok := session.Resolution("s1")
	require.True(t, ok)
	assert.Equal(t, conflict.Merge, r.Action)
	assert.Equal(t, "a.com", r.MergedState["host"])
}

func TestResolverMergePreviewDecline(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	analyses := map[string]merge.Analysis{
		"s1": {Mergeable: true, MergedPreview: entity.Fields{"host": "a.com"}},
	}

	m := update(t, NewResolver(session, WithAnalyses(analyses)), "m", "n")
	assert.Equal(t, ScreenConflictList, m.nav.Current())
	_, resolved := session.Resolution("s1")
	assert.False(t, resolved)
}

func TestResolverDiffScreenNavigation(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	m := update(t, NewResolver(session), "d")
	assert.Equal(t, ScreenDiff, m.nav.Current())

	// Resolution keys work from the diff screen too.
	m = update(t, m, "t")
	r, ok := session.Resolution("s1")
	require.True(t, ok)
	assert.Equal(t, conflict.KeepTarget, r.Action)
	assert.Equal(t, ScreenConflictList, m.nav.Current())
}

func TestResolverConfirmBlockedWhileUnresolved(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	m := update(t, NewResolver(session), "c")

	assert.Equal(t, ScreenConflictList, m.nav.Current())
	assert.Contains(t, m.status, "unresolved")
}

func TestResolverViewRendersConflicts(t *testing.T) {
	session := conflict.NewSession(testConflicts())
	m := update(t, NewResolver(session), "s")

	view := m.View()
	assert.Contains(t, view, "services/billing")
	assert.Contains(t, view, "KEEP_SOURCE")
	assert.Contains(t, view, "routes/billing-route")
}
