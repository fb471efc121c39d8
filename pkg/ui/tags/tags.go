// Package tags renders the console tags used in report lines:
// <info>, <comment>, <warning> and <error>, each closed by </>.
//
// Expand replaces tagged spans with lipgloss styles; Strip drops the tags and
// keeps the text. Anything that is not one of the known tags is left alone,
// so lines like "(>=1.0)" survive untouched.
package tags

import (
	"fmt"
	"io"
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// Known tag names
const (
	Info    = "info"
	Comment = "comment"
	Warning = "warning"
	Error   = "error"
)

var tagPattern = regexp.MustCompile(`<(info|comment|warning|error)>(.*?)</>`)

// Styles maps tag names to styles
type Styles map[string]lipgloss.Style

// DefaultStyles returns the report styles bound to renderer r, which carries
// the color profile of the output.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Info: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#73F59F"}),
		Comment: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#F1C40F"}),
		Warning: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#B35900", Dark: "#FFA657"}),
		Error: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#FF6B6B"}),
	}
}

// Expand renders tagged spans with styles. Tags without a style are stripped.
func Expand(line string, styles Styles) string {
	return tagPattern.ReplaceAllStringFunc(line, func(match string) string {
		m := tagPattern.FindStringSubmatch(match)
		style, ok := styles[m[1]]
		if !ok {
			return m[2]
		}
		return style.Render(m[2])
	})
}

// Strip removes the tags and keeps their text
func Strip(line string) string {
	return tagPattern.ReplaceAllString(line, "$2")
}

// Write prints lines to w one per line, styled for w's color profile or
// with the tags stripped
func Write(w io.Writer, lines []string, styled bool) error {
	var styles Styles
	if styled {
		styles = DefaultStyles(lipgloss.NewRenderer(w))
	}
	for _, line := range lines {
		if styled {
			line = Expand(line, styles)
		} else {
			line = Strip(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
