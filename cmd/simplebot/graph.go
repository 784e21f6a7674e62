package main

import (
	"fmt"

	"github.com/aretw0/simplebot"
	"github.com/aretw0/simplebot/internal/cli"
	"github.com/aretw0/simplebot/internal/presentation/graph"
	"github.com/aretw0/simplebot/pkg/bot"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dialog graph visualization",
	Long: `Outputs a Mermaid diagram of the email dialog. With --conversation the persisted run
of that conversation is highlighted. With --lifecycle the run state machine is printed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if lifecycle, _ := cmd.Flags().GetBool("lifecycle"); lifecycle {
			fmt.Fprint(out, graph.GenerateLifecycle())
			return nil
		}

		b, err := simplebot.New()
		if err != nil {
			return err
		}
		w, ok := b.Dialogs().Waterfall(bot.EmailDialogID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrDialogNotFound, bot.EmailDialogID)
		}

		var run *domain.DialogRun
		if key, _ := cmd.Flags().GetString("conversation"); key != "" {
			run, err = persistedRun(cmd, key)
			if err != nil {
				return err
			}
		}

		fmt.Fprint(out, graph.GenerateMermaid(w, run))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("conversation", "", "Conversation state key to overlay (e.g. console/conversations/<id>)")
	graphCmd.Flags().Bool("lifecycle", false, "Print the dialog run state machine")
}

func persistedRun(cmd *cobra.Command, key string) (*domain.DialogRun, error) {
	var run *domain.DialogRun
	err := withStateAdmin(cmd, func(admin *cli.StateAdmin) error {
		var err error
		run, err = admin.Run(cmd.Context(), key, simplebot.DialogStateProperty)
		return err
	})
	return run, err
}
