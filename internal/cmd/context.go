package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Recipe-Web-App/system-operations-manager/internal/client"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/history"
)

func gatewayClient() client.EntityClient {
	return client.NewGateway(toolConfig.Gateway.AdminURL)
}

// konnectClient returns nil when Konnect is not configured; callers treat
// that as gateway-only operation.
func konnectClient() client.EntityClient {
	if !toolConfig.Konnect.Configured() {
		return nil
	}
	return client.NewKonnect(toolConfig.Konnect.Endpoint, toolConfig.Konnect.ControlPlaneID, toolConfig.Konnect.Token)
}

func openHistory() (*history.Store, error) {
	path := toolConfig.History.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	return history.Open(path)
}

func newRunID() string {
	return uuid.NewString()
}

// parseTypes converts a --type flag value into entity types. Names are
// the plural collection names used everywhere else.
func parseTypes(flagValues []string) ([]entity.Type, error) {
	if len(flagValues) == 0 {
		return nil, nil
	}

	known := map[entity.Type]bool{}
	for _, typ := range entity.DeclaredTypes() {
		known[typ] = true
	}

	var out []entity.Type
	for _, v := range flagValues {
		typ := entity.Type(strings.ToLower(strings.TrimSpace(v)))
		if !known[typ] {
			return nil, fmt.Errorf("unknown entity type %q (one of: %s)", v, joinTypes(entity.DeclaredTypes()))
		}
		out = append(out, typ)
	}
	return out, nil
}

func joinTypes(types []entity.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
