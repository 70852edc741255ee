package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "logview",
	Short: "Browse directories of JSON log files as a table",
	Long: `logview scans a directory tree of flat JSON log files and serves them as
a table shaped by a named, persisted view: column order, visibility,
aliases, display formats, computed columns, pinned rows, and sort.

Scanning is always an explicit full re-walk; view edits only re-render the
rows cached by the last scan.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the console logger the subcommands share.
func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// resolveRoot validates and absolutizes the project root argument.
func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("root path does not exist or is not a directory: %s", abs)
	}
	return abs, nil
}
