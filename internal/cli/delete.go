package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

var deleteCategory string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every FAQ in a category",
	Args:  cobra.NoArgs,
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringVarP(&deleteCategory, "category", "c", "", "category to remove (required)")
	_ = deleteCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	category := strings.TrimSpace(deleteCategory)
	if category == "" {
		return errors.New("category cannot be empty")
	}
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	removed, err := rt.repo.DeleteMany(ctx, faq.Filter{Category: category})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	rt.service.InvalidateCache()
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d FAQs from %q\n", removed, category)
	return nil
}
