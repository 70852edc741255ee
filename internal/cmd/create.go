package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logview-dev/logview/internal/model"
	"github.com/logview-dev/logview/internal/scanner"
	"github.com/logview-dev/logview/internal/viewstore"
)

var (
	createPattern      string
	createName         string
	createFrom         string
	createWarningLimit int
)

var createCmd = &cobra.Command{
	Use:   "create <root>",
	Short: "Create a view and run the first scan",
	Long: `Create a named view for the given project root and run the first scan.

Examples:
  logview create ./runs --pattern '\.scaler\.json$'
  logview create ./runs --pattern '\.json$' --name experiments
  logview create ./runs --name copy --from experiments`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createPattern, "pattern", "", "regex matched against root-relative file paths")
	createCmd.Flags().StringVar(&createName, "name", "default", "view name")
	createCmd.Flags().StringVar(&createFrom, "from", "", "copy configuration from an existing view")
	createCmd.Flags().IntVar(&createWarningLimit, "warning-limit", 20, "number of warnings to print")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args[0])
	if err != nil {
		return err
	}
	if createFrom == "" && createPattern == "" {
		return fmt.Errorf("--pattern is required unless --from is given")
	}

	store := viewstore.New(root)
	var view model.View
	if createFrom != "" {
		view, err = store.CreateFrom(createName, createFrom)
	} else {
		view, err = store.Create(createName, createPattern)
	}
	if err != nil {
		return err
	}

	result, err := scanner.Scan(root, view.Pattern, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Created view %q under %s\n", view.Name, store.Dir())
	fmt.Printf("Scan summary: total_files=%d matched_files=%d parsed_records=%d warnings=%d\n",
		result.Summary.TotalFiles, result.Summary.MatchedFiles,
		result.Summary.ParsedRecords, result.Summary.WarningCount)

	if len(result.Warnings) > 0 {
		fmt.Println("Warnings:")
		limit := createWarningLimit
		if limit > len(result.Warnings) {
			limit = len(result.Warnings)
		}
		for _, w := range result.Warnings[:limit] {
			fmt.Printf("- %s: %s\n", w.Path, w.Message)
		}
	}
	return nil
}
