package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/triage/internal/cli"
	"github.com/aretw0/triage/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage is a symptom triage and specialist recommendation engine",
	Long: `Triage walks a short decision tree or classifies a free-text description of
symptoms, and recommends which kind of specialist to see. It never diagnoses.

Without --tree the built-in reference tree and keyword rules are used.`,
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
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./"+config.DefaultPath+" when present)")
	flags.String("tree", "", "Tree source: a .yaml/.json document or a directory with one node per file")
	flags.String("rules", "", "Document holding the classifier rules")
	flags.String("entry", "", "Start node id")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
}

// loadConfig reads the config file and lets explicit flags win over it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	overrides := map[string]*string{
		"tree":       &cfg.Tree,
		"rules":      &cfg.Rules,
		"entry":      &cfg.EntryNode,
		"log-level":  &cfg.Log.Level,
		"log-format": &cfg.Log.Format,
	}
	for name, dest := range overrides {
		if cmd.Flags().Changed(name) {
			*dest, _ = cmd.Flags().GetString(name)
		}
	}
	return cfg, nil
}

// newApp loads the configuration and builds the application.
// Callers must Close the returned App.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg)
}
