package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

var (
	searchQuery string
	searchTopK  int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the corpus with hybrid ranking",
	Args:  cobra.NoArgs,
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	_ = searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	resp, err := rt.service.Search(ctx, faq.SearchRequest{Query: searchQuery, TopK: searchTopK})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if resp.TotalResults == 0 {
		fmt.Fprintln(out, "No matching FAQs.")
		return nil
	}
	fmt.Fprintf(out, "%d results (%s):\n", resp.TotalResults, resp.Method)
	for i, r := range resp.Results {
		fmt.Fprintf(out, "\n%d. [%s] %s  (score %.3f)\n", i+1, r.Identifier, r.Question, r.CombinedScore)
		fmt.Fprintf(out, "   %s\n", r.Answer)
	}
	return nil
}
