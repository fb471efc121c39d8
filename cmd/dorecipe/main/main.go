package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/arthur-debert/dorecipe/cmd/dorecipe"
	"github.com/arthur-debert/dorecipe/pkg/ui/tags"
	"github.com/charmbracelet/lipgloss"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := dorecipe.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		styles := tags.DefaultStyles(lipgloss.NewRenderer(os.Stderr))
		fmt.Fprintln(os.Stderr, tags.Expand(fmt.Sprintf("<error>Error: %v</>", err), styles))
		stop()
		os.Exit(1)
	}
}
