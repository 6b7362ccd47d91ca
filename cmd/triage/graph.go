package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/triage/internal/cli"
	"github.com/aretw0/triage/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the tree visualization",
	Long: `Outputs the decision tree as a Mermaid flowchart or a Graphviz DOT digraph.

With --session the nodes a stored session visited are highlighted. This needs
a shared session store (redis.addr in the config).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		src, err := cli.LoadSource(cfg)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			app, err := cli.NewApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			state, _, err := app.Sessions.Current(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", id, err)
			}
			overlay = graph.OverlayFromState(state)
		}

		format, _ := cmd.Flags().GetString("format")
		var output string
		switch format {
		case "mermaid":
			output = graph.GenerateMermaid(src.Tree, overlay)
		case "dot":
			if output, err = graph.GenerateDOT(src.Tree, overlay); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q, supported: mermaid, dot", format)
		}
		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or dot")
	graphCmd.Flags().String("session", "", "Highlight the path of a stored session")
}
