package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/simplebot/internal/cli"
	"github.com/aretw0/simplebot/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simplebot",
	Short: "A simple bot that collects an email address",
	Long: `simplebot runs a small waterfall dialog that asks for an email address,
validates it, stores it in user state and sends a confirmation email.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default ./simplebot.yaml if present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the configuration and builds the logger for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli.NewLogger(cfg, debug), nil
}
