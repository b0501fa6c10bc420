package declarative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
)

func TestValidateConfigValid(t *testing.T) {
	cfg := &Config{
		Services: []entity.Fields{{"name": "billing", "host": "a.com", "port": 443, "protocol": "https"}},
		Routes:   []entity.Fields{{"name": "billing-route", "service": "billing", "paths": []any{"/billing"}}},
	}

	result := ValidateConfig(cfg)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateConfigCollectsEveryError(t *testing.T) {
	cfg := &Config{
		Services: []entity.Fields{
			{"name": "billing"},                                           // missing host
			{"name": "payments", "host": "b.com", "port": 70_000},         // port out of range
			{"name": "ledger", "host": "c.com", "protocol": "semaphores"}, // bad enum
		},
	}

	result := ValidateConfig(cfg)
	require.False(t, result.Valid)
	assert.Len(t, result.Errors, 3)
}

func TestValidateConfigErrorPathsNameTheEntry(t *testing.T) {
	cfg := &Config{
		Services: []entity.Fields{{"name": "billing", "host": "a.com", "port": 99_999}},
	}

	result := ValidateConfig(cfg)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "services[0].port", result.Errors[0].Path)
	assert.Equal(t, "billing", result.Errors[0].EntityName)
}

func TestValidateConfigGhostServiceReferenceIsError(t *testing.T) {
	// No services section at all: a route's service reference is still a
	// hard error because a route cannot exist without its service.
	cfg := &Config{
		Routes: []entity.Fields{{"name": "orphan", "service": "ghost"}},
	}

	result := ValidateConfig(cfg)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "routes[0].service", result.Errors[0].Path)
	assert.Contains(t, result.Errors[0].Message, `"ghost"`)
}

func TestValidateConfigNestedReferenceObject(t *testing.T) {
	cfg := &Config{
		Services: []entity.Fields{{"name": "billing", "host": "a.com"}},
		Routes:   []entity.Fields{{"name": "r1", "service": map[string]any{"name": "billing"}}},
	}

	result := ValidateConfig(cfg)
	assert.True(t, result.Valid)
}

func TestValidateConfigUnmanagedSectionReferenceIsWarning(t *testing.T) {
	// The document does not manage consumers, so a plugin scoped to one may
	// validly reference a live consumer.
	cfg := &Config{
		Plugins: []entity.Fields{{"name": "rate-limiting", "consumer": "alice"}},
	}

	result := ValidateConfig(cfg)
	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "plugins[0].consumer", result.Warnings[0].Path)
}

func TestValidateConfigManagedSectionReferenceIsError(t *testing.T) {
	// Consumers are managed here, so a dangling reference cannot resolve.
	cfg := &Config{
		Consumers: []entity.Fields{{"username": "bob"}},
		Plugins:   []entity.Fields{{"name": "rate-limiting", "consumer": "alice"}},
	}

	result := ValidateConfig(cfg)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "plugins[0].consumer", result.Errors[0].Path)
}

func TestValidateEntityRequiredEmptyString(t *testing.T) {
	issues := ValidateEntity(entity.TypeService, entity.Fields{"name": "billing", "host": "  "}, "services[0]")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "empty")
}
