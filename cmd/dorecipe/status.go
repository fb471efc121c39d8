package dorecipe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/commands"
	"github.com/arthur-debert/dorecipe/pkg/ui"
	"github.com/arthur-debert/dorecipe/pkg/ui/tags"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status [packages...]",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			root, _ := cmd.Flags().GetString("root")

			result, err := commands.Status(commands.StatusOptions{Root: root, Packages: args})
			if err != nil {
				return fmt.Errorf(MsgErrStatus, err)
			}

			w := cmd.OutOrStdout()
			if format == ui.FormatJSON {
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return tags.Write(w, statusLines(result), format == ui.FormatTerminal)
		},
	}
}

func statusLines(result *commands.StatusResult) []string {
	var lines []string
	if len(result.Recipes) == 0 && len(result.NotApplied) == 0 {
		return []string{MsgNoRecipes}
	}
	lines = append(lines, fmt.Sprintf(MsgStatusHeader, result.LockFile))
	for _, r := range result.Recipes {
		lines = append(lines, fmt.Sprintf(MsgStatusRecipe, r.Package, r.Version, r.Origin))
		if len(r.Actions) > 0 {
			lines = append(lines, fmt.Sprintf(MsgStatusActions, strings.Join(r.Actions, ", ")))
		}
		if len(r.Files) > 0 {
			lines = append(lines, fmt.Sprintf(MsgStatusFiles, strings.Join(r.Files, ", ")))
		}
	}
	for _, name := range result.NotApplied {
		lines = append(lines, fmt.Sprintf(MsgStatusNotApplied, name))
	}
	return lines
}
