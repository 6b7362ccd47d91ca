package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/triage/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive triage conversation",
	Long: `Starts a conversation on standard input and output.

Type a description of your symptoms to get a recommendation, or /triage to be
guided through the questions. /doctors lists specialists for the last
recommendation, /cancel abandons the guided questions and /help lists the
commands.

With --json every assistant turn is written as one JSON object per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		asJSON, _ := cmd.Flags().GetBool("json")
		guided, _ := cmd.Flags().GetBool("guided")
		sessionID, _ := cmd.Flags().GetString("session")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return app.RunChat(ctx, cli.ChatOptions{
			JSON:        asJSON,
			Guided:      guided,
			Interactive: !asJSON && term.IsTerminal(int(os.Stdin.Fd())),
			SessionID:   sessionID,
			In:          cmd.InOrStdin(),
			Out:         cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("json", false, "Use JSON Lines for input and output")
	chatCmd.Flags().BoolP("guided", "g", false, "Start with the guided questions")
	chatCmd.Flags().String("session", "", "Session id (default: generated)")
}
