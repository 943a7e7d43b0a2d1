package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/proact"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "proact",
		Short: "Inspect and exercise the proact reactive runtime",
		Long: `proact prints the scheduler configuration of the reactive runtime
and runs a small collection scenario showing incremental derived views.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a yaml scheduler config")

	cmd.AddCommand(
		lanesCmd(&configPath),
		demoCmd(&configPath),
	)

	return cmd
}

// loadConfig reads path, or returns the default config when path is empty.
func loadConfig(path string) (proact.Config, error) {
	if path == "" {
		return proact.DefaultConfig(), nil
	}

	return proact.LoadConfig(path)
}

// newLogger writes text records to stderr at the level of cfg.
func newLogger(cfg proact.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
