package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Recipe-Web-App/system-operations-manager/internal/declarative"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
	"github.com/Recipe-Web-App/system-operations-manager/internal/exitcode"
	"github.com/Recipe-Web-App/system-operations-manager/internal/history"
	"github.com/Recipe-Web-App/system-operations-manager/internal/version"
)

var (
	configFile         string
	configOutput       string
	configTypes        []string
	includeCredentials bool
	configDryRun       bool
	configYes          bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the gateway declaratively from config files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the gateway's current state to a config file",
	Long: `Write the gateway's live entities to a YAML or JSON file (chosen by
extension). Credential fields are scrubbed unless --include-credentials
is set, so exports are safe to commit.`,
	RunE: runConfigExport,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file without touching the gateway",
	Long: `Check every entity against its schema and verify that cross-references
resolve within the document. All problems are reported in one pass.

Exit codes:
  0 - Valid
  3 - Validation failed`,
	RunE: runConfigValidate,
}

var configDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what applying a config file would change",
	RunE:  runConfigDiff,
}

var configApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile the gateway toward a config file",
	Long: `Create, update, and delete gateway entities until they match the
document. Only declared sections are touched. Writes run in dependency
order; a failed write is reported but does not halt the batch.`,
	RunE: runConfigApply,
}

func init() {
	configExportCmd.Flags().StringVarP(&configOutput, "output", "o", "gateway.yaml", "output file (.yaml or .json)")
	configExportCmd.Flags().StringSliceVar(&configTypes, "type", nil, "restrict to entity types")
	configExportCmd.Flags().BoolVar(&includeCredentials, "include-credentials", false, "include consumer credential fields")

	for _, c := range []*cobra.Command{configValidateCmd, configDiffCmd, configApplyCmd} {
		c.Flags().StringVarP(&configFile, "file", "f", "", "config file to read (required)")
		_ = c.MarkFlagRequired("file")
	}
	configDiffCmd.Flags().StringSliceVar(&configTypes, "type", nil, "restrict to entity types")
	configApplyCmd.Flags().BoolVar(&configDryRun, "dry-run", false, "plan only; write nothing")
	configApplyCmd.Flags().BoolVarP(&configYes, "yes", "y", false, "apply without asking for confirmation")

	configCmd.AddCommand(configExportCmd, configValidateCmd, configDiffCmd, configApplyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigExport(cmd *cobra.Command, args []string) error {
	types, err := parseTypes(configTypes)
	if err != nil {
		return err
	}

	manager := declarative.NewManager(gatewayClient(), declarative.WithLogger(logger))
	cfg, err := manager.ExportState(cmd.Context(), types, includeCredentials)
	if err != nil {
		return err
	}

	if err := cfg.Save(configOutput, version.Version); err != nil {
		return err
	}
	logger.Info("exported gateway state", "path", configOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := declarative.Load(configFile)
	if err != nil {
		return err
	}

	result := declarative.ValidateConfig(cfg)
	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", warning)
	}
	for _, issue := range result.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", issue)
	}

	if !result.Valid {
		return errors.New(errors.ErrCodeSchemaInvalid,
			fmt.Sprintf("%s has %d validation error(s)", configFile, len(result.Errors)))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", configFile)
	return nil
}

func runConfigDiff(cmd *cobra.Command, args []string) error {
	types, err := parseTypes(configTypes)
	if err != nil {
		return err
	}

	cfg, err := declarative.Load(configFile)
	if err != nil {
		return err
	}

	manager := declarative.NewManager(gatewayClient(), declarative.WithLogger(logger))
	plan, err := manager.DiffConfig(cmd.Context(), cfg, types)
	if err != nil {
		return err
	}

	if plan.Empty() {
		fmt.Fprintln(cmd.OutOrStdout(), "gateway already matches the config; nothing to do")
		return nil
	}

	for _, tp := range plan.Types {
		for _, create := range tp.Creates {
			fmt.Fprintf(cmd.OutOrStdout(), "+ %s/%s\n", tp.Type, entity.Key(create, "?"))
		}
		for _, update := range tp.Updates {
			fmt.Fprintf(cmd.OutOrStdout(), "~ %s/%s\n", tp.Type, update.Name)
			for _, change := range update.Changes {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s: %s -> %s\n", change.Field, change.Old, change.New)
			}
		}
		for _, name := range tp.Deletes {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s/%s\n", tp.Type, name)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), plan.Summary())
	return nil
}

func runConfigApply(cmd *cobra.Command, args []string) error {
	cfg, err := declarative.Load(configFile)
	if err != nil {
		return err
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	manager := declarative.NewManager(gatewayClient(),
		declarative.WithLogger(logger),
		declarative.WithRecorder(store, newRunID()),
	)

	if !configDryRun {
		plan, err := manager.DiffConfig(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		if plan.Empty() {
			fmt.Fprintln(cmd.OutOrStdout(), "gateway already matches the config; nothing to do")
			return nil
		}
		c, u, d := plan.Counts()
		ok, err := confirmWrite(
			fmt.Sprintf("Apply %d create(s), %d update(s), %d delete(s) to the gateway?", c, u, d),
			configYes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted; nothing applied")
			return nil
		}
	}

	ops, err := manager.ApplyConfig(cmd.Context(), cfg, configDryRun)
	if err != nil {
		return err
	}

	for _, op := range ops {
		line := fmt.Sprintf("%s %s/%s: %s", op.Operation, op.EntityType, op.EntityKey, op.Result)
		if op.Error != "" {
			line += " (" + op.Error + ")"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	fmt.Fprintln(cmd.OutOrStdout(), history.Summarize(ops))

	for _, op := range ops {
		if op.Result == history.ResultFailed {
			return exitcode.WithCode(exitcode.GeneralError,
				"some apply operations failed; the gateway may be partially reconciled")
		}
	}
	return nil
}
