package main

import (
	"context"
	"errors"
	"os"

	"github.com/aretw0/simplebot"
	"github.com/aretw0/simplebot/internal/cli"
	"github.com/aretw0/simplebot/internal/presentation/tui"
	"github.com/aretw0/simplebot/pkg/runner"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot from the terminal",
	Long: `Starts a local conversation. The bot greets first, then every line you type is
sent as a message. Use --json to exchange NDJSON activities and replies instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		conversation, _ := cmd.Flags().GetString("conversation")
		user, _ := cmd.Flags().GetString("user")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		svc, err := cli.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.Error("Failed to close storage", "error", err)
			}
		}()

		out := cmd.OutOrStdout()
		opts := []runner.Option{
			runner.WithLogger(logger),
			runner.WithIdentity("", conversation, user),
		}
		if jsonMode {
			opts = append(opts, runner.WithJSON())
		} else if tui.IsInteractive() {
			tui.PrintBanner(out, simplebot.Version)
			opts = append(opts, runner.WithRenderer(tui.NewRenderer()))
		}

		console := runner.NewConsole(svc.Bot, os.Stdin, out, opts...)
		err = console.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if !jsonMode {
			cli.PrintSystemMessage(out, "Conversation '%s' closed.", console.ConversationID())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("json", false, "Exchange NDJSON activities and replies")
	chatCmd.Flags().String("conversation", "", "Conversation id to resume (default: a new one)")
	chatCmd.Flags().String("user", runner.DefaultUserID, "User id")
}
