package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Inspect compiled-in command extensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered plugins and whether they are active",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := registry.Names()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no plugins registered")
			return nil
		}

		active := map[string]bool{}
		for _, p := range registry.Active() {
			active[p.Name()] = true
		}

		for _, name := range names {
			state := "registered"
			if active[name] {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, state)
		}
		return nil
	},
}

func init() {
	pluginCmd.AddCommand(pluginListCmd)
	rootCmd.AddCommand(pluginCmd)
}
