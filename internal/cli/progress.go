package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/pkg/metrics"
)

// newProgress returns a callback that renders a bar on w, created lazily once the total is known.
func newProgress(w io.Writer, description string) faq.Progress {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		}
		_ = bar.Set(done)
	}
}

func printUsage(w io.Writer, usage *metrics.UsageCounter) {
	snap := usage.Snapshot()
	if snap.IsZero() {
		return
	}
	fmt.Fprintf(w, "\nEmbedding usage:\n")
	fmt.Fprintf(w, "  Requests:      %d\n", snap.Requests)
	fmt.Fprintf(w, "  Prompt tokens: %d\n", snap.PromptTokens)
	fmt.Fprintf(w, "  Total tokens:  %d\n", snap.TotalTokens)
}
