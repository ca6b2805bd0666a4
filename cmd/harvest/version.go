package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artwall/harvest"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of harvest",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "harvest version %s\n", strings.TrimSpace(harvest.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
