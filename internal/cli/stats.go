package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

var statsCategory string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsCategory, "category", "c", "", "count a single category")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	out := cmd.OutOrStdout()
	if statsCategory != "" {
		n, err := rt.repo.CountDocuments(ctx, faq.Filter{Category: statsCategory})
		if err != nil {
			return fmt.Errorf("count failed: %w", err)
		}
		fmt.Fprintf(out, "%s: %d\n", statsCategory, n)
		return nil
	}
	stats, err := rt.service.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total FAQs:      %d\n", stats.Total)
	fmt.Fprintf(out, "With embeddings: %d\n", stats.WithEmbeddings)
	printCategories(out, stats.Categories)
	return nil
}
