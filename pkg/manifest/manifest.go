package manifest

import (
	"github.com/arthur-debert/dorecipe/pkg/types"
)

// Manifest is one recipe resolved for a package
type Manifest struct {
	PackageName string
	Provenance  Provenance

	// Contrib marks recipes from non-curated repositories
	Contrib bool

	// Actions are kept in declaration order, at most one per kind
	Actions []Action

	// Operation is the context the manifest is processed in; it is never persisted
	Operation types.OperationKind
}

// New builds a manifest from already-validated actions
func New(pkg string, provenance Provenance, actions ...Action) *Manifest {
	return &Manifest{
		PackageName: pkg,
		Provenance:  provenance,
		Actions:     actions,
	}
}

// Action returns the action of the given kind, if declared
func (m *Manifest) Action(kind Kind) (Action, bool) {
	for _, a := range m.Actions {
		if a.Kind() == kind {
			return a, true
		}
	}
	return nil, false
}

// Kinds returns the declared kinds in order
func (m *Manifest) Kinds() []Kind {
	kinds := make([]Kind, 0, len(m.Actions))
	for _, a := range m.Actions {
		kinds = append(kinds, a.Kind())
	}
	return kinds
}

// IsContrib reports whether the recipe comes from a contrib repository
func (m *Manifest) IsContrib() bool {
	return m.Contrib || m.Provenance.IsContrib()
}

// IsEmpty reports whether the manifest has nothing to apply
func (m *Manifest) IsEmpty() bool {
	return len(m.Actions) == 0
}

// Walk dispatches every action to v in order, stopping at the first error
func (m *Manifest) Walk(v ActionVisitor) error {
	for _, a := range m.Actions {
		if err := a.Accept(v); err != nil {
			return err
		}
	}
	return nil
}
