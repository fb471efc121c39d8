package types

import (
	"fmt"
	"strings"
)

// OperationKind is the kind of change the host applied to a package
type OperationKind string

const (
	// OperationInstall means the package was added to the project
	OperationInstall OperationKind = "install"

	// OperationUpdate means the package moved to another version
	OperationUpdate OperationKind = "update"

	// OperationUninstall means the package was removed from the project
	OperationUninstall OperationKind = "uninstall"
)

// ParseOperationKind converts a host-provided string into an OperationKind
func ParseOperationKind(s string) (OperationKind, error) {
	switch OperationKind(strings.ToLower(strings.TrimSpace(s))) {
	case OperationInstall:
		return OperationInstall, nil
	case OperationUpdate, "upgrade":
		return OperationUpdate, nil
	case OperationUninstall, "remove":
		return OperationUninstall, nil
	default:
		return "", fmt.Errorf("unknown operation kind: %q", s)
	}
}

// IsRemoval reports whether the operation takes the package out of the project
func (k OperationKind) IsRemoval() bool {
	return k == OperationUninstall
}

// Operation is one record of the host operation feed
type Operation struct {
	Kind    OperationKind
	Package Package
}

// String renders the operation for logs
func (o Operation) String() string {
	return fmt.Sprintf("%s %s (%s)", o.Kind, o.Package.Name, o.Package.DisplayVersion())
}
