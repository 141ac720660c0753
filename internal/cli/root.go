package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-engine/internal/infra/config"
	"github.com/yanqian/faq-engine/pkg/logger"
)

var (
	cfgFile   string
	logLevel  string
	cfg       *config.Config
	appLogger *slog.Logger

	loadConfig = config.Load
)

var rootCmd = &cobra.Command{
	Use:   "faqctl",
	Short: "Curate and query the FAQ corpus",
	Long: `faqctl maintains the FAQ store behind the search service: bulk migration,
markdown import, embedding regeneration, exports and one-off additions.

Example usage:
  faqctl import-md FAQ.md --out faqs.json   # Convert markdown into a dataset
  faqctl migrate --file faqs.json           # Replace the store contents
  faqctl regenerate-embeddings --workers 8  # Re-embed every question
  faqctl search -q "how do I reset my password"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			if err := os.Setenv("CONFIG_PATH", cfgFile); err != nil {
				return fmt.Errorf("failed to set config path: %w", err)
			}
		}
		loaded, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		appLogger = logger.NewWithWriter(cmd.ErrOrStderr(), logLevel)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
}
