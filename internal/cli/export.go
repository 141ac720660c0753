package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

var (
	exportLimit int
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export FAQs as CSV",
	Long: `Render the corpus as CSV ordered by identifier, or the most recent entries when
--limit is set. The file is also uploaded when an export bucket is configured.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", 0, "export only the N most recent entries")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write the CSV to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	result, err := rt.service.Export(ctx, faq.ExportRequest{Limit: exportLimit})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if exportOut == "" {
		_, err = cmd.OutOrStdout().Write(result.Data)
		return err
	}
	if err := os.WriteFile(exportOut, result.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", result.Rows, exportOut)
	if result.Location != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded to %s\n", result.Location)
	}
	return nil
}
