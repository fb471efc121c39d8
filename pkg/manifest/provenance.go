package manifest

import (
	"regexp"
	"strings"
)

// AutoGeneratedSource is the source part of provenance strings synthesized
// from a package's own metadata
const AutoGeneratedSource = "auto-generated recipe"

var provenancePattern = regexp.MustCompile(`^([^:]+):([^@]+)@(.+)$`)

// Provenance identifies where a recipe came from. Two manifests with equal
// provenance strings are treated as the same recipe.
type Provenance struct {
	Package       string
	Version       string
	Source        string
	Ref           string
	AutoGenerated bool

	// raw keeps strings that do not follow the package:version@origin form
	raw string
}

// NewProvenance builds the provenance of a catalog recipe
func NewProvenance(pkg, version, source, ref string) Provenance {
	return Provenance{Package: pkg, Version: version, Source: source, Ref: ref}
}

// AutoGenerated builds the provenance of a recipe synthesized for pkg
func AutoGenerated(pkg, version string) Provenance {
	return Provenance{Package: pkg, Version: version, Source: AutoGeneratedSource, AutoGenerated: true}
}

// ParseProvenance parses "<package>:<version>@<source>:<ref>". Strings that
// do not match are kept verbatim and returned unchanged by String.
func ParseProvenance(s string) Provenance {
	m := provenancePattern.FindStringSubmatch(s)
	if m == nil {
		return Provenance{raw: s}
	}

	p := Provenance{Package: m[1], Version: m[2]}
	origin := m[3]
	if origin == AutoGeneratedSource {
		p.Source = origin
		p.AutoGenerated = true
		return p
	}

	if i := strings.LastIndex(origin, ":"); i > 0 {
		p.Source, p.Ref = origin[:i], origin[i+1:]
	} else {
		p.Source = origin
	}
	return p
}

// Origin is the part after "@": "<source>:<ref>" or the auto-generated marker
func (p Provenance) Origin() string {
	if p.raw != "" {
		return ""
	}
	if p.AutoGenerated || p.Ref == "" {
		return p.Source
	}
	return p.Source + ":" + p.Ref
}

// String renders the provenance in its canonical form
func (p Provenance) String() string {
	if p.raw != "" {
		return p.raw
	}
	if p.IsZero() {
		return ""
	}
	return p.Package + ":" + p.Version + "@" + p.Origin()
}

// IsZero reports whether no provenance was set
func (p Provenance) IsZero() bool {
	return p.raw == "" && p.Package == "" && p.Version == "" && p.Source == ""
}

// Parsed reports whether the provenance follows the structured form
func (p Provenance) Parsed() bool {
	return p.raw == "" && !p.IsZero()
}

// IsContrib reports whether the source names a contrib recipe repository
func (p Provenance) IsContrib() bool {
	return strings.Contains(p.String(), "recipes-contrib")
}
