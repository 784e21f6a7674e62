package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/simplebot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of simplebot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "simplebot version %s\n", strings.TrimSpace(simplebot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
