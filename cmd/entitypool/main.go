package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "entitypool",
	Short:         "Run an entity pool from a layout and Lua systems",
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Tick the pool until interrupted",
	Long: `Load the config, build the pool described by the layout file and tick it
at the configured rate. With pool.watch enabled, edits to scripts or the
layout rebuild the pool in place.`,
	Args: cobra.NoArgs,
	RunE: runPool,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Build the pool once, admit the seed entities and print counts",
	Args:  cobra.NoArgs,
	RunE:  checkPool,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $ENTITYPOOL_CONFIG or config/pool.toml)")
	rootCmd.AddCommand(runCmd, checkCmd)
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv("ENTITYPOOL_CONFIG"); p != "" {
		return p
	}
	return "config/pool.toml"
}
