package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Recipe-Web-App/system-operations-manager/internal/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.GetInfo()
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), info.Short())
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
