// Package cmd wires the CLI surface: sync, config, plugin, and version
// commands over the gateway/Konnect reconciliation engine.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Recipe-Web-App/system-operations-manager/internal/config"
	"github.com/Recipe-Web-App/system-operations-manager/internal/log"
	"github.com/Recipe-Web-App/system-operations-manager/internal/plugin"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	toolConfig *config.Config
	logger     *log.Logger
	registry   = plugin.NewRegistry()
)

var rootCmd = &cobra.Command{
	Use:   "sysops",
	Short: "Reconcile a self-hosted gateway with its Konnect control plane",
	Long: `sysops keeps a self-hosted API gateway and a Konnect control plane in
agreement. It detects configuration drift between the two systems,
walks the operator through resolving conflicts, applies resolutions to
both systems, and manages the gateway declaratively from YAML or JSON
config files.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/sysops/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := toolConfig.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	format := toolConfig.Log.Format
	if logFormat != "" {
		format = logFormat
	}

	logger = log.New(log.Config{
		Level:  log.ParseLevel(level),
		Format: log.ParseFormat(format),
		Output: log.OutputStderr(),
	})
	log.SetDefaultLogger(logger)
	return nil
}

// ExecuteContext loads configuration, activates configured plugins, and
// runs the root command. Plugin activation happens before argument
// parsing so plugin commands participate in it.
func ExecuteContext(ctx context.Context, args []string) error {
	path := configPathFromArgs(args)
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	toolConfig = cfg

	if err := registry.Activate(cfg.Plugins.Enabled, log.DefaultLogger(), cfg.Plugins.Settings); err != nil {
		return err
	}
	defer registry.Cleanup()

	if err := registry.RegisterCommands(rootCmd); err != nil {
		return err
	}

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// configPathFromArgs pre-scans for --config so the config file can steer
// plugin activation, which must happen before cobra parses flags.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return ""
}
