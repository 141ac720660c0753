package cli

import (
	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/bootstrap"
	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/interface/mcp"
)

var mcpUser string

var mcpStdioCmd = &cobra.Command{
	Use:   "mcp-stdio",
	Short: "Serve the search_faq and add_faq tools over stdio",
	Long: `Run the MCP tools on stdin/stdout for clients that launch the server as a
subprocess. add_faq is authorized with the configured admin password and
attributed to --user.`,
	Args: cobra.NoArgs,
	RunE: runMCPStdio,
}

func init() {
	mcpStdioCmd.Flags().StringVar(&mcpUser, "user", "", "attribution for FAQs added through add_faq")
	rootCmd.AddCommand(mcpStdioCmd)
}

func runMCPStdio(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	adminSvc := admin.NewService(bootstrap.AdminConfig(cfg), appLogger)
	return mcp.NewServer(cfg.MCP, rt.service, adminSvc, appLogger).ServeStdio(cfg.Admin.Password, mcpUser)
}
