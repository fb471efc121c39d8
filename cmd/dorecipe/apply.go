package dorecipe

import (
	"fmt"

	"github.com/arthur-debert/dorecipe/pkg/commands"
	"github.com/arthur-debert/dorecipe/pkg/engine"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/ui"
	"github.com/spf13/cobra"
)

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apply",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Example: MsgApplyExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.apply")

			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			root, _ := cmd.Flags().GetString("root")
			feedPath, _ := cmd.Flags().GetString("feed")

			report, runErr := commands.Apply(cmd.Context(), commands.ApplyOptions{
				Root:      root,
				FeedPath:  feedPath,
				Overrides: applyOverrides(cmd),
			})
			if report != nil {
				if err := writeReport(cmd, report, format); err != nil {
					return err
				}
			}
			if runErr != nil {
				logger.Debug().Err(runErr).Msg("Apply finished with errors")
				return fmt.Errorf(MsgErrApply, runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringP("feed", "f", "", MsgFlagFeed)
	cmd.Flags().Bool("allow-contrib", false, MsgFlagAllowContrib)
	cmd.Flags().Bool("strict", false, MsgFlagStrict)
	cmd.Flags().Bool("no-catalog", false, MsgFlagNoCatalog)
	_ = cmd.MarkFlagRequired("feed")

	return cmd
}

// applyOverrides maps the flags the user set onto option names. Unset flags
// leave the configured value alone.
func applyOverrides(cmd *cobra.Command) map[string]interface{} {
	overrides := map[string]interface{}{}
	for _, name := range []string{"allow-contrib", "strict"} {
		if cmd.Flags().Changed(name) {
			value, _ := cmd.Flags().GetBool(name)
			overrides[name] = value
		}
	}
	if noCatalog, _ := cmd.Flags().GetBool("no-catalog"); noCatalog {
		overrides["catalog.enabled"] = false
	}
	return overrides
}

func writeReport(cmd *cobra.Command, report *engine.Report, format ui.Format) error {
	w := cmd.OutOrStdout()
	if format == ui.FormatJSON {
		return report.WriteJSON(w)
	}
	return report.Render(w, format == ui.FormatTerminal)
}
