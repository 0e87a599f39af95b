package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	a := &app{}
	var rootCmd = &cobra.Command{
		Use:   "nodecloud",
		Short: "nodecloud - a rotating 3D cloud of projects and their tags",
		Long: `nodecloud lays out a set of projects on an outer sphere and the tags they
share on an inner sphere, then serves, renders or displays the rotating cloud.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (defaults to ./"+configFileName+" when present)")
	rootCmd.PersistentFlags().StringVarP(&a.datasetPath, "dataset", "d", "", "Dataset file (.yaml, .toml or .json); overrides the config")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newViewCommand(a))
	rootCmd.AddCommand(newRenderCommand(a))
	rootCmd.AddCommand(newInspectCommand(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
