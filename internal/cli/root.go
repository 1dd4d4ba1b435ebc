// Package cli wires the recdex commands.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	corpusPath string
	output     string
}

// NewRootCommand creates the root command.
func NewRootCommand(version, commit, date string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "recdex",
		Short: "Content-based item recommender",
		Long: `recdex builds a bag-of-words vector for every item of a tabular corpus
and recommends the items most similar to a queried one by cosine similarity.

It can answer queries from the command line or serve them over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			switch opts.output {
			case outputText, outputJSON:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want text or json)", opts.output)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file path (default: config/$ENV.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.corpusPath, "corpus", "", "corpus file (CSV or .parquet), overrides corpus.path")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "output format (text, json)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newRecommendCommand(opts))
	rootCmd.AddCommand(newTermsCommand(opts))
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if version == "" {
				version = "dev"
			}
			if commit == "" {
				commit = "unknown"
			}
			if date == "" {
				date = "unknown"
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "recdex %s (%s) built on %s\n", version, commit, date)
			_, _ = fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			_, _ = fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
