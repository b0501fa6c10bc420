package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
)

// Styles used by the renderers. Rendering is purely presentational; no
// resolution decision ever reads its output.
var (
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // Red
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))  // Green
	fieldStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Unified renders the drift between two states of one entity in a
// unified-diff-like format, one hunk per drifted field.
func Unified(typ entity.Type, name string, source, target entity.Fields) string {
	fields := DriftFields(typ, source, target)
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("--- source/%s/%s", typ, name)))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("+++ target/%s/%s", typ, name)))
	b.WriteString("\n")

	for _, field := range fields {
		b.WriteString(fieldStyle.Render(fmt.Sprintf("@@ %s @@", field)))
		b.WriteString("\n")
		b.WriteString(removedStyle.Render("- " + renderValue(source[field])))
		b.WriteString("\n")
		b.WriteString(addedStyle.Render("+ " + renderValue(target[field])))
		b.WriteString("\n")
	}

	return b.String()
}

// SideBySide renders the drift between two states as two labeled columns,
// one row per drifted field.
func SideBySide(typ entity.Type, name string, source, target entity.Fields) string {
	fields := DriftFields(typ, source, target)
	if len(fields) == 0 {
		return ""
	}

	width := len("field")
	for _, f := range fields {
		if len(f) > width {
			width = len(f)
		}
	}

	var rows []string
	rows = append(rows, headerStyle.Render(
		fmt.Sprintf("%-*s  %-30s  %s", width, "field", "source", "target")))
	for _, field := range fields {
		left := renderValue(source[field])
		right := renderValue(target[field])
		rows = append(rows, fmt.Sprintf("%-*s  %s  %s",
			width, fieldStyle.Render(field),
			removedStyle.Render(fmt.Sprintf("%-30s", left)),
			addedStyle.Render(right)))
	}

	header := headerStyle.Render(fmt.Sprintf("%s/%s", typ, name))
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}
