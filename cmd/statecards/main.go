// Command statecards serves and renders the state dashboard cards.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"covidtracking.org/statecards/internal/config"
	"covidtracking.org/statecards/internal/dataset"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const appName = "statecards"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "State dashboard cards for public-health data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with STATECARDS_* overrides")

	load := func() (config.Config, error) {
		return config.Load(config.WithEnvFile(envFile))
	}

	cmd.AddCommand(serveCmd(load), renderCmd(load), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

// newStore picks the file source when a dataset path is configured and the
// bundled sample data otherwise.
func newStore(path string) *dataset.Store {
	if path == "" {
		return dataset.NewStore(dataset.NewStaticSource())
	}
	return dataset.NewStore(dataset.NewFileSource(path))
}
