package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model.
func (m ResolverModel) View() string {
	if m.aborted {
		return "resolution aborted; no changes will be applied\n"
	}
	if m.done {
		return ""
	}

	var b strings.Builder
	switch m.nav.Current() {
	case ScreenConflictList:
		b.WriteString(m.listView())
	case ScreenConflictDetail:
		b.WriteString(m.detailView())
	case ScreenDiff:
		b.WriteString(m.diffView())
	case ScreenMergePreview:
		b.WriteString(m.mergeView())
	case ScreenConfirm:
		b.WriteString(m.confirmView())
	}

	if m.status != "" {
		b.WriteString("\n" + m.styles.Subtitle.Render(m.status))
	}
	b.WriteString("\n" + m.helpView())
	return b.String()
}

func (m ResolverModel) listView() string {
	conflicts := m.session.Conflicts()
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Conflicts (%d unresolved of %d)",
		len(m.session.Unresolved()), len(conflicts))))
	b.WriteString("\n")

	for i, c := range conflicts {
		line := fmt.Sprintf("%s/%s  drift: %s", c.EntityType, c.EntityName, strings.Join(c.DriftFields, ", "))
		if r, resolved := m.session.Resolution(c.EntityID); resolved {
			line = m.styles.Resolved.Render(fmt.Sprintf("%s  [%s]", line, r.Action))
		} else {
			line = m.styles.Pending.Render(line)
		}
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Selected.Render("> ")
		}
		b.WriteString(cursor + line + "\n")
	}
	return b.String()
}

func (m ResolverModel) detailView() string {
	c, ok := m.current()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%s/%s", c.EntityType, c.EntityName)))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("source: %s   target: %s   direction: %s",
		c.SourceSystemID, c.TargetSystemID, c.Direction)))
	b.WriteString("\n\n")
	for _, field := range c.DriftFields {
		b.WriteString(fmt.Sprintf("  %s: %v -> %v\n",
			m.styles.Selected.Render(field), c.SourceState[field], c.TargetState[field]))
	}
	return b.String()
}

func (m ResolverModel) diffView() string {
	c, ok := m.current()
	if !ok {
		return ""
	}
	header := m.styles.Title.Render(fmt.Sprintf("Diff: %s/%s", c.EntityType, c.EntityName))
	return header + "\n" + m.viewport.View()
}

func (m ResolverModel) mergeView() string {
	c, ok := m.current()
	if !ok {
		return ""
	}
	analysis := m.analyses[c.EntityID]

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Auto-merge preview: %s/%s", c.EntityType, c.EntityName)))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("auto-merged fields: %s",
		strings.Join(analysis.AutoMergeableFields, ", "))))
	b.WriteString("\n\n")
	for _, field := range analysis.AutoMergeableFields {
		b.WriteString(fmt.Sprintf("  %s: %v\n", field, analysis.MergedPreview[field]))
	}
	b.WriteString("\n" + m.styles.Pending.Render("accept this merged state? (y/n)"))
	return b.String()
}

func (m ResolverModel) confirmView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Review resolutions"))
	b.WriteString("\n")
	for _, r := range m.session.AllResolutions() {
		b.WriteString(fmt.Sprintf("  %s/%s: %s\n",
			r.Conflict.EntityType, r.Conflict.EntityName, m.styles.Resolved.Render(string(r.Action))))
	}
	b.WriteString("\n" + m.styles.Pending.Render("apply these resolutions? (y/n)"))
	return b.String()
}

func (m ResolverModel) helpView() string {
	key := func(k, desc string) string {
		return m.styles.Key.Render(k) + " " + m.styles.KeyDesc.Render(desc)
	}

	switch m.nav.Current() {
	case ScreenConfirm, ScreenMergePreview:
		return strings.Join([]string{key("y", "accept"), key("n", "back"), key("q", "abort")}, "  ")
	case ScreenDiff:
		return strings.Join([]string{
			key("s", "keep source"), key("t", "keep target"), key("x", "skip"),
			key("esc", "back"), key("q", "abort"),
		}, "  ")
	default:
		return strings.Join([]string{
			key("s", "keep source"), key("t", "keep target"), key("x", "skip"), key("m", "merge"),
			key("d", "diff"), key("c", "confirm"), key("q", "abort"),
		}, "  ")
	}
}
