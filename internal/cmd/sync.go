package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Recipe-Web-App/system-operations-manager/internal/client"
	"github.com/Recipe-Web-App/system-operations-manager/internal/conflict"
	"github.com/Recipe-Web-App/system-operations-manager/internal/diff"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
	"github.com/Recipe-Web-App/system-operations-manager/internal/exitcode"
	"github.com/Recipe-Web-App/system-operations-manager/internal/history"
	"github.com/Recipe-Web-App/system-operations-manager/internal/merge"
	"github.com/Recipe-Web-App/system-operations-manager/internal/sync"
	"github.com/Recipe-Web-App/system-operations-manager/internal/tui"
)

var (
	syncTypes       []string
	syncInteractive bool
	syncDryRun      bool
	syncStrategy    string
	syncYes         bool
)

// Prompt seams, swappable in tests so command logic runs headless.
var (
	confirmPrompt = tui.Confirm
	selectPrompt  = tui.SelectAction
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Detect and resolve drift between the gateway and Konnect",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration drift between the gateway and Konnect",
	Long: `Compare every entity of the gateway against Konnect and report the
drifted fields per entity. No state is changed.

Exit codes:
  0 - The systems agree
  4 - Drift detected`,
	RunE: runSyncStatus,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Sync the gateway's state out to Konnect",
	Long: `Detect conflicts between the gateway (source) and Konnect (target) and
apply resolutions. The default policy keeps the gateway's state; use
--interactive to decide per conflict, or --strategy to pick a blanket
policy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), conflict.DirectionPush)
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Sync Konnect's state in to the gateway",
	Long: `Detect conflicts between Konnect (source) and the gateway (target) and
apply resolutions. The default policy keeps the gateway's state; use
--interactive to decide per conflict, or --strategy to pick a blanket
policy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), conflict.DirectionPull)
	},
}

func init() {
	for _, c := range []*cobra.Command{syncStatusCmd, syncPushCmd, syncPullCmd} {
		c.Flags().StringSliceVar(&syncTypes, "type", nil, "restrict to entity types (e.g. services,routes)")
	}
	for _, c := range []*cobra.Command{syncPushCmd, syncPullCmd} {
		c.Flags().BoolVarP(&syncInteractive, "interactive", "i", false, "resolve each conflict interactively")
		c.Flags().BoolVar(&syncDryRun, "dry-run", false, "show resolutions without writing")
		c.Flags().StringVar(&syncStrategy, "strategy", "", "resolution policy: keep-source, keep-target, skip, or prompt")
		c.Flags().BoolVarP(&syncYes, "yes", "y", false, "apply without asking for confirmation")
	}

	syncCmd.AddCommand(syncStatusCmd, syncPushCmd, syncPullCmd)
	rootCmd.AddCommand(syncCmd)
}

// detectConflicts lists both systems per type and matches entities by
// their stable key.
func detectConflicts(ctx context.Context, source, target client.EntityClient, direction conflict.Direction, sourceID, targetID string, types []entity.Type) ([]conflict.Conflict, error) {
	if len(types) == 0 {
		types = entity.CreateOrder()
	}

	var all []conflict.Conflict
	for _, typ := range types {
		sourceList, err := source.List(ctx, typ)
		if err != nil {
			return nil, err
		}
		targetList, err := target.List(ctx, typ)
		if err != nil {
			return nil, err
		}
		all = append(all, conflict.Detect(typ, sourceList, targetList, direction, sourceID, targetID)...)
	}
	return all, nil
}

func requireKonnect() (client.EntityClient, error) {
	kn := konnectClient()
	if kn == nil {
		return nil, errors.New(errors.ErrCodeKonnectUnreachable,
			"Konnect is not configured; set konnect.endpoint, konnect.control_plane_id, and konnect.token")
	}
	return kn, nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	types, err := parseTypes(syncTypes)
	if err != nil {
		return err
	}

	kn, err := requireKonnect()
	if err != nil {
		return err
	}

	conflicts, err := detectConflicts(ctx, gatewayClient(), kn, conflict.DirectionPush, "gateway", "konnect", types)
	if err != nil {
		return err
	}

	if len(conflicts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "gateway and Konnect agree; no drift")
		return nil
	}

	for _, c := range conflicts {
		fmt.Fprintln(cmd.OutOrStdout(), diff.Unified(c.EntityType, c.EntityName, c.SourceState, c.TargetState))
	}
	return exitcode.WithCode(exitcode.DriftDetected,
		fmt.Sprintf("drift detected in %d entities", len(conflicts)))
}

func runSync(ctx context.Context, direction conflict.Direction) error {
	types, err := parseTypes(syncTypes)
	if err != nil {
		return err
	}

	kn, err := requireKonnect()
	if err != nil {
		return err
	}
	gw := gatewayClient()

	source, target := gw, kn
	sourceID, targetID := "gateway", "konnect"
	if direction == conflict.DirectionPull {
		source, target = kn, gw
		sourceID, targetID = "konnect", "gateway"
	}

	conflicts, err := detectConflicts(ctx, source, target, direction, sourceID, targetID, types)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		logger.Info("no conflicts detected; nothing to sync", "direction", direction)
		return nil
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	session := conflict.NewSession(conflicts)
	if syncInteractive {
		if err := resolveInteractively(ctx, session, store, sourceID, targetID); err != nil {
			return err
		}
	} else if err := resolveByStrategy(session); err != nil {
		return err
	}

	if err := session.Gate(); err != nil {
		return err
	}

	if syncDryRun {
		for _, r := range session.AllResolutions() {
			fmt.Printf("%s/%s: %s\n", r.Conflict.EntityType, r.Conflict.EntityName, r.Action)
		}
		fmt.Printf("dry run: %d resolution(s), nothing written\n", len(session.AllResolutions()))
		return nil
	}

	// The TUI already ends on its own confirmation screen; everything
	// else gets a prompt before the write phase unless --yes.
	if !syncInteractive {
		ok, err := confirmWrite(fmt.Sprintf("Apply %d resolution(s)?", len(session.AllResolutions())), syncYes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("aborted; no changes applied")
			return nil
		}
	}

	orch := sync.New(gw,
		sync.WithKonnect(kn),
		sync.WithRecorder(store, newRunID()),
		sync.WithLogger(logger),
	)
	results, err := orch.ApplyAll(ctx, session.AllResolutions())
	if err != nil {
		return err
	}

	report := sync.Report{Direction: direction, Results: results}
	fmt.Println(report.Summary())

	if code := report.ExitCode(); code != exitcode.Success {
		return exitcode.WithCode(code, exitcode.Description(code))
	}
	return nil
}

// resolveByStrategy applies a blanket policy: the direction default when
// no --strategy is given.
func resolveByStrategy(session *conflict.Session) error {
	switch syncStrategy {
	case "":
		session.ResolveDefaults()
		return nil
	case "keep-source":
		_, err := session.ResolveRemaining(conflict.KeepSource)
		return err
	case "keep-target":
		_, err := session.ResolveRemaining(conflict.KeepTarget)
		return err
	case "skip":
		_, err := session.ResolveRemaining(conflict.Skip)
		return err
	case "prompt":
		return resolveWithPrompts(session)
	default:
		return fmt.Errorf("unknown strategy %q (one of: keep-source, keep-target, skip, prompt)", syncStrategy)
	}
}

// resolveWithPrompts asks for an action per conflict, one question at a
// time, without entering the full-screen resolver. MERGE is not offered:
// it needs the provenance analysis the interactive resolver computes.
func resolveWithPrompts(session *conflict.Session) error {
	for _, c := range session.Unresolved() {
		action, err := selectPrompt(c, false)
		if err != nil {
			return err
		}
		if err := session.SetResolution(conflict.Resolution{Conflict: c, Action: action}); err != nil {
			return err
		}
	}
	return nil
}

// confirmWrite gates a write phase behind a prompt; --yes pre-approves.
func confirmWrite(message string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	return confirmPrompt(message, false)
}

// resolveInteractively runs the TUI resolver. Auto-merge candidates are
// computed from apply history where per-field provenance exists.
func resolveInteractively(ctx context.Context, session *conflict.Session, store *history.Store, sourceID, targetID string) error {
	analyses := make(map[string]merge.Analysis, len(session.Conflicts()))
	for _, c := range session.Conflicts() {
		prov, err := store.ProvenanceFor(ctx, c.EntityType, c.EntityName, sourceID, targetID)
		if err != nil {
			logger.WithError(err).Warn("provenance lookup failed; treating conflict as manual",
				"entity", c.EntityName)
			continue
		}
		analysis := merge.ComputeAutoMerge(c, prov)
		if analysis.Mergeable {
			if valid := merge.ValidateMergedState(analysis.MergedPreview, c.EntityType); !valid.Valid {
				continue
			}
		}
		analyses[c.EntityID] = analysis
	}

	program := tea.NewProgram(tui.NewResolver(session, tui.WithAnalyses(analyses)), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("interactive resolver: %w", err)
	}

	model, ok := final.(tui.ResolverModel)
	if !ok || model.Aborted() || !model.Completed() {
		return exitcode.WithCode(exitcode.Interrupted, "resolution aborted; no changes applied")
	}
	return nil
}
