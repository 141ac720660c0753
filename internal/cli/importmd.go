package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/pkg/util"
)

var (
	importOut   string
	importApply bool
)

var importMDCmd = &cobra.Command{
	Use:   "import-md <FAQ.md>",
	Short: "Convert a markdown FAQ into a migration dataset",
	Long: `Parse "## N. Category" headers and "**N.M Question**" entries into the JSON
dataset consumed by migrate. With --apply the dataset is migrated immediately.

Examples:
  faqctl import-md FAQ.md --out faqs.json
  faqctl import-md FAQ.md --apply`,
	Args: cobra.ExactArgs(1),
	RunE: runImportMD,
}

func init() {
	importMDCmd.Flags().StringVarP(&importOut, "out", "o", "", "write the dataset to this file instead of stdout")
	importMDCmd.Flags().BoolVar(&importApply, "apply", false, "migrate the parsed dataset into the store")
	rootCmd.AddCommand(importMDCmd)
}

func runImportMD(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open markdown: %w", err)
	}
	defer f.Close()

	entries, warnings, err := faq.ParseMarkdown(f)
	if err != nil {
		return fmt.Errorf("failed to parse markdown: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	dataset := faq.Dataset{
		Source:    filepath.Base(args[0]),
		Date:      util.FormatTimestamp(util.NowUTC()),
		TotalFAQs: len(entries),
		FAQs:      entries,
	}

	if importOut != "" || !importApply {
		data, err := json.MarshalIndent(dataset, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode dataset: %w", err)
		}
		if importOut == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else {
			if err := os.WriteFile(importOut, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("failed to write dataset: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d FAQs to %s\n", len(entries), importOut)
		}
	}
	if !importApply {
		return nil
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)
	report, err := rt.ingestor.Migrate(ctx, dataset, faq.MigrateOptions{
		Progress: newProgress(cmd.ErrOrStderr(), "Embedding"),
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d FAQs (%d removed, %d total)\n", report.Inserted, report.Removed, report.FinalCount)
	printUsage(cmd.OutOrStdout(), rt.usage)
	return nil
}
