package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/webotron/webotron/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the webotron version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
