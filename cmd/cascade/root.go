package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/cascade/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cascade",
	Short: "Cascade simulates chains of low energy nuclear reactions",
	Long: `Cascade expands a fuel mix into the network of fusion and two-to-two
reactions it can reach, loop after loop, against a reaction dataset.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().String("dataset", "", "Reaction dataset: a SQLite database or a .yaml file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("error loading config: %w", err)
	}

	if cmd.Flags().Changed("dataset") {
		cfg.Source.Path, _ = cmd.Flags().GetString("dataset")
		cfg.Source.Driver = "sqlite"
		switch strings.ToLower(filepath.Ext(cfg.Source.Path)) {
		case ".yaml", ".yml":
			cfg.Source.Driver = "yaml"
		}
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	}
	return cfg, nil
}
