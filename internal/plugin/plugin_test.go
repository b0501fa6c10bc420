package plugin

import (
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlugin struct {
	name     string
	initErr  error
	settings map[string]any
	events   *[]string
}

func (p *stubPlugin) Name() string { return p.name }

func (p *stubPlugin) Initialize(pctx Context) error {
	p.settings = pctx.Settings
	*p.events = append(*p.events, "init:"+p.name)
	return p.initErr
}

func (p *stubPlugin) RegisterCommands(root *cobra.Command) error {
	root.AddCommand(&cobra.Command{Use: p.name})
	return nil
}

func (p *stubPlugin) Cleanup() error {
	*p.events = append(*p.events, "cleanup:"+p.name)
	return nil
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("audit", func() Plugin { return nil }))
	assert.Error(t, r.Register("audit", func() Plugin { return nil }))
}

func TestActivatePassesSettings(t *testing.T) {
	var events []string
	p := &stubPlugin{name: "audit", events: &events}

	r := NewRegistry()
	require.NoError(t, r.Register("audit", func() Plugin { return p }))

	settings := map[string]map[string]any{"audit": {"path": "/tmp/audit.log"}}
	require.NoError(t, r.Activate([]string{"audit"}, nil, settings))

	assert.Equal(t, "/tmp/audit.log", p.settings["path"])
	require.Len(t, r.Active(), 1)
}

func TestActivateUnknownName(t *testing.T) {
	r := NewRegistry()
	err := r.Activate([]string{"ghost"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestActivateFailureCleansUpEarlierPlugins(t *testing.T) {
	var events []string
	good := &stubPlugin{name: "good", events: &events}
	bad := &stubPlugin{name: "bad", initErr: fmt.Errorf("no database"), events: &events}

	r := NewRegistry()
	require.NoError(t, r.Register("good", func() Plugin { return good }))
	require.NoError(t, r.Register("bad", func() Plugin { return bad }))

	err := r.Activate([]string{"good", "bad"}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"init:good", "init:bad", "cleanup:good"}, events)
	assert.Empty(t, r.Active())
}

func TestRegisterCommandsAndCleanupOrder(t *testing.T) {
	var events []string
	a := &stubPlugin{name: "alpha", events: &events}
	b := &stubPlugin{name: "beta", events: &events}

	r := NewRegistry()
	require.NoError(t, r.Register("alpha", func() Plugin { return a }))
	require.NoError(t, r.Register("beta", func() Plugin { return b }))
	require.NoError(t, r.Activate([]string{"alpha", "beta"}, nil, nil))

	root := &cobra.Command{Use: "sysops"}
	require.NoError(t, r.RegisterCommands(root))
	assert.Len(t, root.Commands(), 2)

	require.NoError(t, r.Cleanup())
	assert.Equal(t, []string{"init:alpha", "init:beta", "cleanup:beta", "cleanup:alpha"}, events)
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("zeta", func() Plugin { return nil }))
	require.NoError(t, r.Register("alpha", func() Plugin { return nil }))
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}
