package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

var addReq faq.AddRequest

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a single FAQ with duplicate detection",
	Long: `Add one FAQ. The entry is rejected when an exact, fuzzy or semantic duplicate
already exists. The identifier is allocated within the category unless --id is given.`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addReq.Question, "question", "q", "", "question text (required)")
	addCmd.Flags().StringVarP(&addReq.Answer, "answer", "a", "", "answer text (required)")
	addCmd.Flags().StringVarP(&addReq.Category, "category", "c", "", "category name (required)")
	addCmd.Flags().StringVar(&addReq.Identifier, "id", "", "explicit identifier such as Q3.4")
	addCmd.Flags().StringVar(&addReq.AddedBy, "added-by", "", "attribution for the new entry")
	for _, name := range []string{"question", "answer", "category"} {
		_ = addCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	resp := rt.service.AddRecord(ctx, addReq)
	if !resp.Success {
		return errors.New(resp.Message)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	return nil
}
