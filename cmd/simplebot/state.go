package main

import (
	"github.com/aretw0/simplebot/internal/cli"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage stored user and conversation state",
	Long: `List, inspect, and remove the state bags kept by the configured store.
Keys look like "<channel>/users/<user>" and "<channel>/conversations/<conversation>".`,
}

var stateLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStateAdmin(cmd, func(admin *cli.StateAdmin) error {
			return admin.List(cmd.Context(), cmd.OutOrStdout())
		})
	},
}

var stateInspectCmd = &cobra.Command{
	Use:   "inspect <key>",
	Short: "Print a stored bag (email addresses masked unless --reveal)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStateAdmin(cmd, func(admin *cli.StateAdmin) error {
			return admin.Inspect(cmd.Context(), args[0], cmd.OutOrStdout())
		})
	},
}

var stateRmCmd = &cobra.Command{
	Use:   "rm <key>...",
	Short: "Remove one or more stored bags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStateAdmin(cmd, func(admin *cli.StateAdmin) error {
			return admin.Remove(cmd.Context(), args, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateLsCmd)
	stateCmd.AddCommand(stateInspectCmd)
	stateCmd.AddCommand(stateRmCmd)

	stateInspectCmd.Flags().Bool("reveal", false, "Show email addresses in clear")
}

func withStateAdmin(cmd *cobra.Command, fn func(*cli.StateAdmin) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reveal, _ := cmd.Flags().GetBool("reveal")

	storage, err := cli.OpenStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	admin, err := cli.NewStateAdmin(storage, reveal, logger)
	if err != nil {
		return err
	}
	return fn(admin)
}
