package engine

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/ui/tags"
)

// Report is the consolidated output of one run. Lines carry console tags;
// Render expands or strips them.
type Report struct {
	RunID string

	// Recipes counts the recipes configured or unconfigured
	Recipes int

	// Operations holds one line per package that was acted on, skipped or failed
	Operations []string

	// Messages holds the deferred lines, intro included
	Messages []string
}

func (r *Report) configured(m *manifest.Manifest, version string) {
	r.Recipes++
	r.Operations = append(r.Operations, "  - Configuring "+describe(m.PackageName, m.Provenance, version))
}

func (r *Report) unconfigured(pkg string, prov manifest.Provenance, version string) {
	r.Recipes++
	r.Operations = append(r.Operations, "  - Unconfiguring "+describe(pkg, prov, version))
}

func (r *Report) skipped(pkg, reason string) {
	r.Operations = append(r.Operations, fmt.Sprintf("  - Skipping <info>%s</>: <comment>%s</>", pkg, reason))
}

func (r *Report) failed(pkg string, err error) {
	r.Operations = append(r.Operations, fmt.Sprintf("  - Failed <info>%s</>: <error>%s</>", pkg, err))
}

func describe(pkg string, prov manifest.Provenance, version string) string {
	if !prov.Parsed() {
		return fmt.Sprintf("<info>%s</> (<comment>>=%s</>): From %s", pkg, version, prov.String())
	}
	origin := prov.Origin()
	if prov.AutoGenerated {
		origin = "<comment>" + origin + "</>"
	}
	return fmt.Sprintf("<info>%s</> (<comment>>=%s</>): From %s", pkg, prov.Version, origin)
}

// Empty reports whether the run did anything worth printing
func (r *Report) Empty() bool {
	return len(r.Operations) == 0 && len(r.Messages) == 0
}

// Lines returns the tagged report lines
func (r *Report) Lines() []string {
	if r.Empty() {
		return nil
	}
	suffix := "s"
	if r.Recipes == 1 {
		suffix = ""
	}
	lines := []string{fmt.Sprintf("<info>Recipe operations: %d recipe%s</>", r.Recipes, suffix)}
	lines = append(lines, r.Operations...)
	return append(lines, r.Messages...)
}

// PlainLines returns the report lines with tags stripped
func (r *Report) PlainLines() []string {
	lines := r.Lines()
	for i, l := range lines {
		lines[i] = tags.Strip(l)
	}
	return lines
}

// Render writes the report to w, styled for a color terminal or as plain text
func (r *Report) Render(w io.Writer, styled bool) error {
	return tags.Write(w, r.Lines(), styled)
}

type jsonReport struct {
	RunID      string   `json:"run_id"`
	Recipes    int      `json:"recipes"`
	Operations []string `json:"operations"`
	Messages   []string `json:"messages"`
}

// WriteJSON writes the report, tags stripped, as one JSON document
func (r *Report) WriteJSON(w io.Writer) error {
	out := jsonReport{RunID: r.RunID, Recipes: r.Recipes, Operations: []string{}, Messages: []string{}}
	for _, l := range r.Operations {
		out.Operations = append(out.Operations, tags.Strip(l))
	}
	for _, l := range r.Messages {
		out.Messages = append(out.Messages, tags.Strip(l))
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
