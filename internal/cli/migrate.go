package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

var (
	migrateFile         string
	migrateQuestionOnly bool
	migrateAddedBy      string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Replace the store contents with a JSON dataset",
	Long: `Load a dataset produced by import-md (or written by hand), embed every entry and
replace the existing store contents. Duplicate detection is skipped.

Examples:
  faqctl migrate --file faqs.json
  faqctl migrate --file faqs.json --question-only`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateFile, "file", "f", "", "dataset JSON file (required)")
	migrateCmd.Flags().BoolVar(&migrateQuestionOnly, "question-only", false, "embed only the question text")
	migrateCmd.Flags().StringVar(&migrateAddedBy, "added-by", "", "attribution recorded on every entry")
	_ = migrateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dataset, err := readDataset(migrateFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Migrating %d FAQs from %s...\n", len(dataset.FAQs), migrateFile)
	if len(dataset.FAQs) == 0 {
		return fmt.Errorf("dataset %s contains no faqs", migrateFile)
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	report, err := rt.ingestor.Migrate(ctx, dataset, faq.MigrateOptions{
		QuestionOnly: migrateQuestionOnly,
		AddedBy:      migrateAddedBy,
		Progress:     newProgress(cmd.ErrOrStderr(), "Embedding"),
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(out, "\nMigration complete:\n")
	fmt.Fprintf(out, "  Removed:     %d\n", report.Removed)
	fmt.Fprintf(out, "  Inserted:    %d\n", report.Inserted)
	fmt.Fprintf(out, "  Final count: %d\n", report.FinalCount)
	printCategories(out, report.Categories)
	printUsage(out, rt.usage)
	return nil
}

func readDataset(path string) (faq.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return faq.Dataset{}, fmt.Errorf("failed to read dataset: %w", err)
	}
	var dataset faq.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return faq.Dataset{}, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return dataset, nil
}

func printCategories(w io.Writer, categories map[string]int) {
	if len(categories) == 0 {
		return
	}
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "\nCategories:\n")
	for _, name := range names {
		fmt.Fprintf(w, "  %-40s %d\n", name, categories[name])
	}
}
