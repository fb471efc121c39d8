package dorecipe

import (
	"github.com/arthur-debert/dorecipe/pkg/ui"
	"github.com/spf13/cobra"
)

// outputFormat resolves --format and --no-color for the command's output
func outputFormat(cmd *cobra.Command) (ui.Format, error) {
	name, _ := cmd.Flags().GetString("format")
	noColor, _ := cmd.Flags().GetBool("no-color")

	format, err := ui.ParseFormat(name)
	if err != nil {
		return ui.FormatText, err
	}
	format = ui.Resolve(format, cmd.OutOrStdout())
	if noColor && format == ui.FormatTerminal {
		format = ui.FormatText
	}
	return format, nil
}
