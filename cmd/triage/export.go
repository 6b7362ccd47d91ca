package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/triage/internal/cli"
	"github.com/aretw0/triage/pkg/adapters/file"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the tree and rules as a single document",
	Long: `Writes the current tree, rules and messages as one YAML or JSON document
that --tree can load again. Use it to start a custom tree from the built-in one
or to flatten a node-per-file repository.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		src, err := cli.LoadSource(cfg)
		if err != nil {
			return err
		}

		outPath, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")
		ext := "." + format
		if outPath != "" && !cmd.Flags().Changed("format") {
			ext = filepath.Ext(outPath)
		}

		data, err := file.Export(src.Tree, src.Rules, src.Messages).Marshal(ext)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		if outPath == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(outPath, data, 0o644)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", "", "Output file (default: standard output)")
	exportCmd.Flags().String("format", "yaml", "Output format when --out has no extension: yaml or json")
}
