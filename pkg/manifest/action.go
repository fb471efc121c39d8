package manifest

// Kind identifies an action kind
type Kind string

const (
	KindWriteFiles         Kind = "write-files"
	KindCopyFromPackage    Kind = "copy-from-package"
	KindRegisterModules    Kind = "register-modules"
	KindSetEnvVars         Kind = "set-env-vars"
	KindGitignoreEntries   Kind = "gitignore-entries"
	KindPostInstallMessage Kind = "post-install-message"
)

// aliases maps the keys used by Flex-style recipes onto canonical kinds
var aliases = map[string]Kind{
	"copy-from-recipe":    KindWriteFiles,
	"bundles":             KindRegisterModules,
	"env":                 KindSetEnvVars,
	"gitignore":           KindGitignoreEntries,
	"post-install-output": KindPostInstallMessage,
}

// Kinds lists every known kind in canonical order
func Kinds() []Kind {
	return []Kind{
		KindWriteFiles,
		KindCopyFromPackage,
		KindRegisterModules,
		KindSetEnvVars,
		KindGitignoreEntries,
		KindPostInstallMessage,
	}
}

// LookupKind resolves a recipe key (canonical name or alias) to a Kind
func LookupKind(key string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == key {
			return k, true
		}
	}
	k, ok := aliases[key]
	return k, ok
}

// Action is one configuration step of a manifest
type Action interface {
	Kind() Kind
	Accept(v ActionVisitor) error
}

// ActionVisitor handles every action kind
type ActionVisitor interface {
	VisitWriteFiles(a *WriteFiles) error
	VisitCopyFromPackage(a *CopyFromPackage) error
	VisitRegisterModules(a *RegisterModules) error
	VisitSetEnvVars(a *SetEnvVars) error
	VisitGitignoreEntries(a *GitignoreEntries) error
	VisitPostInstallMessage(a *PostInstallMessage) error
}

// FileSpec is one file written into the project
type FileSpec struct {
	Target     string `json:"target"`
	Contents   string `json:"contents,omitempty"`
	Executable bool   `json:"executable,omitempty"`
}

// WriteFiles writes recipe-provided files into the project
type WriteFiles struct {
	Files []FileSpec `json:"files"`
}

func (a *WriteFiles) Kind() Kind                   { return KindWriteFiles }
func (a *WriteFiles) Accept(v ActionVisitor) error { return v.VisitWriteFiles(a) }

// Targets returns the target path of every file, in order
func (a *WriteFiles) Targets() []string {
	targets := make([]string, 0, len(a.Files))
	for _, f := range a.Files {
		targets = append(targets, f.Target)
	}
	return targets
}

// CopySpec copies a package-relative source to a project target
type CopySpec struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// CopyFromPackage copies files shipped inside the package into the project
type CopyFromPackage struct {
	Entries []CopySpec `json:"entries"`
}

func (a *CopyFromPackage) Kind() Kind                   { return KindCopyFromPackage }
func (a *CopyFromPackage) Accept(v ActionVisitor) error { return v.VisitCopyFromPackage(a) }

// Module is a bundle/module class enabled for a set of environments
type Module struct {
	Class string   `json:"class"`
	Envs  []string `json:"envs"`
}

// RegisterModules registers module classes in the project's module registry
type RegisterModules struct {
	Modules []Module `json:"modules"`
}

func (a *RegisterModules) Kind() Kind                   { return KindRegisterModules }
func (a *RegisterModules) Accept(v ActionVisitor) error { return v.VisitRegisterModules(a) }

// Classes returns the registered class names, in order
func (a *RegisterModules) Classes() []string {
	classes := make([]string, 0, len(a.Modules))
	for _, m := range a.Modules {
		classes = append(classes, m.Class)
	}
	return classes
}

// EnvVar is one environment variable default. Names of the form "#N" are
// comment lines whose value is the comment text.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IsComment reports whether the entry renders as a comment line
func (e EnvVar) IsComment() bool {
	if len(e.Name) < 2 || e.Name[0] != '#' {
		return false
	}
	for _, r := range e.Name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SetEnvVars adds environment variable defaults to the project's env files
type SetEnvVars struct {
	Vars []EnvVar `json:"vars"`
}

func (a *SetEnvVars) Kind() Kind                   { return KindSetEnvVars }
func (a *SetEnvVars) Accept(v ActionVisitor) error { return v.VisitSetEnvVars(a) }

// GitignoreEntries adds lines to the project's .gitignore
type GitignoreEntries struct {
	Lines []string `json:"lines"`
}

func (a *GitignoreEntries) Kind() Kind                   { return KindGitignoreEntries }
func (a *GitignoreEntries) Accept(v ActionVisitor) error { return v.VisitGitignoreEntries(a) }

// PostInstallMessage queues lines for the end-of-run report
type PostInstallMessage struct {
	Lines []string `json:"lines"`
}

func (a *PostInstallMessage) Kind() Kind                   { return KindPostInstallMessage }
func (a *PostInstallMessage) Accept(v ActionVisitor) error { return v.VisitPostInstallMessage(a) }

var (
	_ Action = (*WriteFiles)(nil)
	_ Action = (*CopyFromPackage)(nil)
	_ Action = (*RegisterModules)(nil)
	_ Action = (*SetEnvVars)(nil)
	_ Action = (*GitignoreEntries)(nil)
	_ Action = (*PostInstallMessage)(nil)
)
