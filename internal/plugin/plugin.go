// Package plugin provides a static registry for optional command
// extensions. Plugins are compiled in and registered by name; the tool
// configuration selects which ones are activated for a run. There is no
// dynamic discovery or loading.
package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Recipe-Web-App/system-operations-manager/internal/log"
)

// Context carries what a plugin needs at initialization.
type Context struct {
	// Logger is the tool's logger; plugins must not build their own.
	Logger *log.Logger
	// Settings holds the plugin's section of the tool configuration.
	Settings map[string]any
}

// Plugin is one compiled-in command extension.
type Plugin interface {
	// Name returns the registry name the plugin was registered under.
	Name() string
	// Initialize prepares the plugin. Called once before any command runs.
	Initialize(pctx Context) error
	// RegisterCommands attaches the plugin's subcommands to the root.
	RegisterCommands(root *cobra.Command) error
	// Cleanup releases any resources. Called once at shutdown.
	Cleanup() error
}

// Factory constructs a fresh plugin instance.
type Factory func() Plugin

// Registry maps plugin names to factories and tracks the instances it
// has activated.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	active    []Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under a unique name.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("plugin %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Names returns every registered plugin name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Activate instantiates and initializes the named plugins in the given
// order. An unknown name or a failed initialization aborts activation;
// already-initialized plugins are cleaned up before returning.
func (r *Registry) Activate(names []string, logger *log.Logger, settings map[string]map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		factory, ok := r.factories[name]
		if !ok {
			r.cleanupLocked()
			return fmt.Errorf("unknown plugin %q", name)
		}

		p := factory()
		pctx := Context{Logger: logger, Settings: settings[name]}
		if err := p.Initialize(pctx); err != nil {
			r.cleanupLocked()
			return fmt.Errorf("initialize plugin %q: %w", name, err)
		}
		r.active = append(r.active, p)
	}
	return nil
}

// Active returns the activated plugins in activation order.
func (r *Registry) Active() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plugin, len(r.active))
	copy(out, r.active)
	return out
}

// RegisterCommands attaches every active plugin's commands to the root.
func (r *Registry) RegisterCommands(root *cobra.Command) error {
	for _, p := range r.Active() {
		if err := p.RegisterCommands(root); err != nil {
			return fmt.Errorf("register commands for plugin %q: %w", p.Name(), err)
		}
	}
	return nil
}

// Cleanup tears down active plugins in reverse activation order. Every
// plugin is attempted; the first error is returned.
func (r *Registry) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleanupLocked()
}

func (r *Registry) cleanupLocked() error {
	var firstErr error
	for i := len(r.active) - 1; i >= 0; i-- {
		if err := r.active[i].Cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.active = nil
	return firstErr
}
