package dorecipe

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Apply package recipes to a project"
	MsgApplyShort   = "Apply the recipes of an operation feed"
	MsgStatusShort  = "Show the recipes applied to the project"
	MsgVersionShort = "Print version information"

	// Status output
	MsgNoRecipes        = "No recipes applied."
	MsgStatusHeader     = "<info>Applied recipes</> (%s):"
	MsgStatusRecipe     = "  - <info>%s</> (<comment>%s</>): %s"
	MsgStatusActions    = "      actions: %s"
	MsgStatusFiles      = "      files: %s"
	MsgStatusNotApplied = "  - <info>%s</>: <comment>no recipe applied</>"

	// Version output
	MsgVersionFormat = "dorecipe version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrApply  = "failed to apply recipes: %w"
	MsgErrStatus = "failed to read recipe status: %w"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagRoot         = "Project root (discovered from the working directory when empty)"
	MsgFlagFormat       = "Output format: auto, terminal, text or json"
	MsgFlagNoColor      = "Disable colored output"
	MsgFlagFeed         = "Operation feed file (YAML or JSON)"
	MsgFlagAllowContrib = "Apply recipes from contrib repositories"
	MsgFlagStrict       = "Abort the run on the first invalid recipe"
	MsgFlagNoCatalog    = "Do not query the recipe catalog"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/apply-example.txt
	msgApplyExampleRaw string
	MsgApplyExample    = strings.TrimSpace(msgApplyExampleRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)
)
