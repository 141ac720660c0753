package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

var regenerateWorkers int

var regenerateCmd = &cobra.Command{
	Use:   "regenerate-embeddings",
	Short: "Recompute the embedding of every stored question",
	Long: `Re-embed every question with the configured provider. Run this after switching
embedding models or dimensions.`,
	Args: cobra.NoArgs,
	RunE: runRegenerate,
}

func init() {
	regenerateCmd.Flags().IntVarP(&regenerateWorkers, "workers", "w", 4, "concurrent embedding requests")
	rootCmd.AddCommand(regenerateCmd)
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Regenerating embeddings with %s (%d dimensions)...\n", rt.embedder.Name(), rt.embedder.Dimension())
	updated, err := rt.ingestor.RegenerateEmbeddings(ctx, faq.RegenerateOptions{
		Workers:  regenerateWorkers,
		Progress: newProgress(cmd.ErrOrStderr(), "Embedding"),
	})
	fmt.Fprintf(out, "Updated %d embeddings\n", updated)
	printUsage(out, rt.usage)
	if err != nil {
		return fmt.Errorf("regeneration incomplete: %w", err)
	}
	return nil
}
