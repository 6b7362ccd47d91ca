package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/triage/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the tree and classifier rules",
	Long: `Reports dangling targets, cycles, malformed choices and unreachable nodes in
the tree, and rules that can never match.

With --watch a node-per-file tree is checked again after every change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		watch, _ := cmd.Flags().GetBool("watch")
		if !watch {
			return cli.Validate(cfg, out)
		}

		app, err := cli.NewApp(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return app.Watch(ctx, cfg, out)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Validate again on every change")
}
