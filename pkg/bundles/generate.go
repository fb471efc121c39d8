package bundles

import (
	"path"
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/spf13/afero"
)

// bundleBaseClasses mark a PHP class as a bundle when its source mentions one
var bundleBaseClasses = []string{
	`Symfony\Component\HttpKernel\Bundle\Bundle`,
	`Symfony\Component\HttpKernel\Bundle\AbstractBundle`,
}

var autoloadStandards = []string{"psr-4", "psr-0"}

// Generate returns an auto-generated manifest registering the package's
// module classes, or nil when there is nothing to register. A malformed
// explicit declaration is a VALIDATION error.
func Generate(fs types.FS, pkg types.Package, kind types.OperationKind, opts config.Options) (*manifest.Manifest, error) {
	logger := logging.GetLogger("bundles").With().Str("package", pkg.Name).Logger()

	modules, declared, err := declaredModules(pkg, opts.ExtraKey)
	if err != nil {
		return nil, err
	}
	if !declared {
		modules = discoverModules(fs, pkg, kind, opts.VendorDir)
	}
	if len(modules) == 0 {
		logger.Debug().Bool("declared", declared).Msg("No modules to register")
		return nil, nil
	}

	m := manifest.New(pkg.Name,
		manifest.AutoGenerated(pkg.Name, pkg.DisplayVersion()),
		&manifest.RegisterModules{Modules: modules},
	)
	m.Operation = kind

	logger.Debug().
		Int("modules", len(modules)).
		Bool("declared", declared).
		Msg("Generated recipe")
	return m, nil
}

func declaredModules(pkg types.Package, extraKey string) ([]manifest.Module, bool, error) {
	section, ok := pkg.ExtraSection(extraKey)
	if !ok {
		return nil, false, nil
	}
	value, ok := section["bundles"]
	if !ok {
		return nil, false, nil
	}

	var modules []manifest.Module
	var err error
	if node := pkg.ExtraNodeAt(extraKey, "bundles"); node != nil {
		modules, err = manifest.DecodeModules(node)
	} else {
		modules, err = manifest.NormalizeModules(value)
	}
	if err != nil {
		if re, ok := err.(*errors.RecipeError); ok {
			return nil, true, re.WithDetail("package", pkg.Name)
		}
		return nil, true, err
	}
	return modules, true, nil
}

func discoverModules(fs types.FS, pkg types.Package, kind types.OperationKind, vendorDir string) []manifest.Module {
	envs := []string{"all"}
	if pkg.Dev {
		envs = []string{"dev", "test"}
	}

	var modules []manifest.Module
	seen := map[string]bool{}
	for _, standard := range autoloadStandards {
		for _, namespace := range pkg.Autoload.Namespaces(standard) {
			for _, dir := range pkg.Autoload[standard][namespace] {
				for _, class := range ClassCandidates(namespace) {
					if seen[class] {
						continue
					}
					// Generate may be asked for a removal whose sources are already
					// gone from the vendor tree, so candidates are kept unchecked
					if !kind.IsRemoval() && !isBundleClass(fs, classFile(vendorDir, pkg.Name, standard, namespace, dir, class)) {
						continue
					}
					seen[class] = true
					modules = append(modules, manifest.Module{Class: class, Envs: append([]string(nil), envs...)})
				}
			}
		}
	}
	return modules
}

// ClassCandidates lists the bundle class names a namespace may hold.
// For `Acme\Foo\` these are `Acme\Foo\FooBundle` and `Acme\Foo\AcmeFooBundle`.
func ClassCandidates(namespace string) []string {
	namespace = strings.Trim(namespace, `\`)
	if namespace == "" {
		return nil
	}
	prefix := namespace + `\`
	parts := strings.Split(namespace, `\`)

	suffix := parts[len(parts)-1]
	if !strings.HasSuffix(suffix, "Bundle") && !strings.HasSuffix(suffix, "Plugin") {
		suffix += "Bundle"
	}

	classes := []string{prefix + suffix}
	acc := ""
	for _, part := range parts[:len(parts)-1] {
		if part == "Bundle" {
			continue
		}
		classes = append(classes, prefix+part+suffix)
		acc += part
		classes = append(classes, prefix+acc+suffix)
	}
	return unique(classes)
}

func classFile(vendorDir, pkgName, standard, namespace, dir, class string) string {
	short := class[strings.LastIndex(class, `\`)+1:]
	base := path.Join(vendorDir, pkgName, dir)
	if standard == "psr-0" {
		base = path.Join(base, strings.ReplaceAll(strings.Trim(namespace, `\`), `\`, "/"))
	}
	return path.Join(base, short+".php")
}

func isBundleClass(fs types.FS, file string) bool {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return false
	}
	contents := string(data)
	for _, base := range bundleBaseClasses {
		if strings.Contains(contents, base) {
			return true
		}
	}
	return false
}

func unique(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
