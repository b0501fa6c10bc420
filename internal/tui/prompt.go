package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/Recipe-Web-App/system-operations-manager/internal/conflict"
)

// Confirm displays a yes/no prompt.
func Confirm(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// SelectAction prompts for a resolution action. Merge is offered only
// when an auto-merge is available for the conflict.
func SelectAction(c conflict.Conflict, mergeAvailable bool) (conflict.Action, error) {
	options := []huh.Option[conflict.Action]{
		huh.NewOption("keep source state", conflict.KeepSource),
		huh.NewOption("keep target state", conflict.KeepTarget),
		huh.NewOption("skip this entity", conflict.Skip),
	}
	if mergeAvailable {
		options = append(options, huh.NewOption("accept auto-merge", conflict.Merge))
	}

	var selected conflict.Action
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[conflict.Action]().
			Title(fmt.Sprintf("%s/%s has drifted; choose a resolution", c.EntityType, c.EntityName)).
			Options(options...).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return selected, nil
}
