package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/joshuapare/cachekit/internal/logging"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "cachectl",
	Short: "Inspect and dump block-cache metadata",
	Long: `cachectl reads the metadata device of a block cache read-only and
dumps, checks or summarises it. Nothing is ever written to the metadata.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail to stderr")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	logging.Init(logging.Options{
		Output: os.Stderr,
		Level:  logLevel(),
		JSON:   logJSON,
	})
	return nil
}

func logLevel() logrus.Level {
	switch {
	case verbose:
		return logrus.DebugLevel
	case quiet:
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError writes err to w as one line. Under --log-json an error carrying
// log fields is written as a structured log entry instead.
func reportError(w io.Writer, err error) {
	var le logging.LoggingError
	if logJSON && errors.As(err, &le) {
		le.Log()
		return
	}
	fmt.Fprintln(w, "cachectl:", err)
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints to stderr in verbose mode, so it never mixes with a
// dump on stdout.
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
