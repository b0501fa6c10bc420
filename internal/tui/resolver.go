// Package tui implements the interactive conflict resolver: a bubbletea
// model that walks the operator through a resolution session one conflict
// at a time. The model mutates only its session; applying the resolved
// session is the caller's job, and an aborted session must not be applied.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Recipe-Web-App/system-operations-manager/internal/conflict"
	"github.com/Recipe-Web-App/system-operations-manager/internal/diff"
	"github.com/Recipe-Web-App/system-operations-manager/internal/merge"
)

// ResolverModel is the interactive resolver's bubbletea model.
type ResolverModel struct {
	session  *conflict.Session
	analyses map[string]merge.Analysis
	nav      *Navigator
	cursor   int
	viewport viewport.Model
	styles   Styles
	width    int
	height   int
	status   string
	aborted  bool
	done     bool
}

// ResolverOption configures a ResolverModel.
type ResolverOption func(*ResolverModel)

// WithAnalyses supplies per-conflict auto-merge analyses, keyed by entity
// id. Conflicts without a mergeable analysis cannot take the merge action.
func WithAnalyses(analyses map[string]merge.Analysis) ResolverOption {
	return func(m *ResolverModel) { m.analyses = analyses }
}

// NewResolver creates a resolver over the given session.
func NewResolver(session *conflict.Session, opts ...ResolverOption) ResolverModel {
	m := ResolverModel{
		session: session,
		nav:     NewNavigator(ScreenConflictList),
		styles:  DefaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Aborted reports whether the operator quit without completing the
// session. An aborted session must be discarded, not applied.
func (m ResolverModel) Aborted() bool { return m.aborted }

// Completed reports whether the operator confirmed the fully resolved
// session.
func (m ResolverModel) Completed() bool { return m.done }

// Init implements tea.Model.
func (m ResolverModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m ResolverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width-4, max(msg.Height-8, 4))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborted = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ResolverModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.nav.Current() {
	case ScreenConflictList:
		return m.handleListKey(msg)
	case ScreenConflictDetail, ScreenDiff:
		return m.handleDetailKey(msg)
	case ScreenMergePreview:
		return m.handleMergeKey(msg)
	case ScreenConfirm:
		return m.handleConfirmKey(msg)
	}
	return m, nil
}

func (m ResolverModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	conflicts := m.session.Conflicts()
	switch msg.String() {
	case "q", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(conflicts)-1 {
			m.cursor++
		}
	case "enter":
		if len(conflicts) > 0 {
			m.nav.Push(ScreenConflictDetail)
		}
	case "d":
		if len(conflicts) > 0 {
			m.openDiff()
		}
	case "c":
		if len(m.session.Unresolved()) == 0 && len(conflicts) > 0 {
			m.nav.Push(ScreenConfirm)
		} else {
			m.status = fmt.Sprintf("%d conflict(s) still unresolved", len(m.session.Unresolved()))
		}
	default:
		return m.handleResolutionKey(msg)
	}
	return m, nil
}

func (m ResolverModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.aborted = true
		return m, tea.Quit
	case "esc":
		m.nav.Pop()
	case "d":
		if m.nav.Current() != ScreenDiff {
			m.openDiff()
		}
	default:
		if m.nav.Current() == ScreenDiff {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			if cmd != nil {
				return m, cmd
			}
		}
		return m.handleResolutionKey(msg)
	}
	return m, nil
}

// handleResolutionKey maps the action keys shared by the list, detail,
// and diff screens.
func (m ResolverModel) handleResolutionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c, ok := m.current()
	if !ok {
		return m, nil
	}

	switch msg.String() {
	case "s":
		return m.resolve(conflict.Resolution{Conflict: c, Action: conflict.KeepSource})
	case "t":
		return m.resolve(conflict.Resolution{Conflict: c, Action: conflict.KeepTarget})
	case "x":
		return m.resolve(conflict.Resolution{Conflict: c, Action: conflict.Skip})
	case "m":
		analysis, found := m.analyses[c.EntityID]
		if !found || !analysis.Mergeable {
			m.status = "no auto-merge available for this conflict"
			return m, nil
		}
		m.nav.Push(ScreenMergePreview)
	}
	return m, nil
}

func (m ResolverModel) handleMergeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.nav.Pop()
	case "q":
		m.aborted = true
		return m, tea.Quit
	case "enter", "y":
		c, ok := m.current()
		if !ok {
			m.nav.Pop()
			return m, nil
		}
		analysis := m.analyses[c.EntityID]
		return m.resolve(conflict.Resolution{
			Conflict:    c,
			Action:      conflict.Merge,
			MergedState: analysis.MergedPreview,
		})
	}
	return m, nil
}

func (m ResolverModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.nav.Pop()
	case "q":
		m.aborted = true
		return m, tea.Quit
	case "enter", "y":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// resolve records the resolution, returns to the list, and advances the
// cursor to the next unresolved conflict. Once everything is resolved the
// confirm screen opens.
func (m ResolverModel) resolve(r conflict.Resolution) (tea.Model, tea.Cmd) {
	if err := m.session.SetResolution(r); err != nil {
		m.status = err.Error()
		return m, nil
	}

	m.nav.Reset(ScreenConflictList)
	m.status = fmt.Sprintf("%s/%s: %s", r.Conflict.EntityType, r.Conflict.EntityName, r.Action)

	unresolved := m.session.Unresolved()
	if len(unresolved) == 0 {
		m.nav.Push(ScreenConfirm)
		return m, nil
	}

	next := unresolved[0].EntityID
	for i, c := range m.session.Conflicts() {
		if c.EntityID == next {
			m.cursor = i
			break
		}
	}
	return m, nil
}

func (m *ResolverModel) openDiff() {
	c, ok := m.current()
	if !ok {
		return
	}
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(76, 16)
	}
	m.viewport.SetContent(diff.SideBySide(c.EntityType, c.EntityName, c.SourceState, c.TargetState))
	m.nav.Push(ScreenDiff)
}

func (m ResolverModel) current() (conflict.Conflict, bool) {
	conflicts := m.session.Conflicts()
	if m.cursor < 0 || m.cursor >= len(conflicts) {
		return conflict.Conflict{}, false
	}
	return conflicts[m.cursor], true
}
