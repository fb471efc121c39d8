// Package envvars adds environment variable defaults to the project.
//
// Variables go into a marked block of .env.dist and .env (whichever exist,
// .env is created when neither does). Unless the project has a .env.test,
// the same variables are also declared as <env> entries in the <php> section
// of the phpunit configuration, between ###+ and ###- comments.
package envvars

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
)

const (
	DotenvFile     = ".env"
	DotenvDistFile = ".env.dist"
	DotenvTestFile = ".env.test"
)

// PhpunitFiles are the phpunit configuration files, by precedence
var PhpunitFiles = []string{"phpunit.xml.dist", "phpunit.dist.xml", "phpunit.xml"}

// Handler applies set-env-vars actions
type Handler struct {
	random io.Reader
}

// NewHandler creates an envvars handler
func NewHandler() *Handler {
	return &Handler{random: rand.Reader}
}

// Name returns the handler name
func (h *Handler) Name() string {
	return "envvars"
}

// Apply writes the variables block to the dotenv files and the phpunit
// configuration
func (h *Handler) Apply(ctx handlers.Context, a *manifest.SetEnvVars) (handlers.Result, error) {
	vars, err := h.evaluate(a.Vars)
	if err != nil {
		return handlers.Result{}, err
	}

	markers := handlers.BlockMarkers(ctx.Package)
	body := dotenvBody(vars)
	for _, file := range dotenvTargets(ctx) {
		if err := handlers.UpdateText(ctx, file, func(content string) string {
			return markers.Upsert(content, body)
		}); err != nil {
			return handlers.Result{}, err
		}
	}

	if filesystem.IsFile(ctx.FS, DotenvTestFile) {
		ctx.Logger.Debug().Msg("Project has .env.test, phpunit configuration left alone")
		return handlers.Result{Message: "environment variables set"}, nil
	}

	for _, file := range PhpunitFiles {
		if !filesystem.IsFile(ctx.FS, file) {
			continue
		}
		if err := configurePhpunit(ctx, file, vars); err != nil {
			return handlers.Result{}, err
		}
		break
	}
	return handlers.Result{Message: "environment variables set"}, nil
}

// Unapply removes the package's blocks from the dotenv and phpunit files
func (h *Handler) Unapply(ctx handlers.Context, a *manifest.SetEnvVars) (handlers.Result, error) {
	markers := handlers.BlockMarkers(ctx.Package)
	for _, file := range []string{DotenvDistFile, DotenvFile} {
		if !filesystem.IsFile(ctx.FS, file) {
			continue
		}
		if err := handlers.UpdateText(ctx, file, func(content string) string {
			out, _ := markers.Remove(content)
			return out
		}); err != nil {
			return handlers.Result{}, err
		}
	}

	for _, file := range PhpunitFiles {
		if !filesystem.IsFile(ctx.FS, file) {
			continue
		}
		if err := unconfigurePhpunit(ctx, file); err != nil {
			return handlers.Result{}, err
		}
	}
	return handlers.Result{Message: "environment variables removed"}, nil
}

func dotenvTargets(ctx handlers.Context) []string {
	var targets []string
	for _, file := range []string{DotenvDistFile, DotenvFile} {
		if filesystem.IsFile(ctx.FS, file) {
			targets = append(targets, file)
		}
	}
	if len(targets) == 0 {
		targets = []string{DotenvFile}
	}
	return targets
}

func dotenvBody(vars []manifest.EnvVar) string {
	var b strings.Builder
	for _, v := range vars {
		if v.IsComment() {
			b.WriteString("# " + v.Value + "\n")
			continue
		}
		b.WriteString(v.Name + "=" + Escape(v.Value) + "\n")
	}
	return b.String()
}

// Escape quotes a dotenv value when it holds spaces, tabs, newlines or
// shell-significant characters
func Escape(value string) string {
	if !strings.ContainsAny(value, " \t\n&!\"") {
		return value
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\t", `\t`, "\n", `\n`)
	return `"` + r.Replace(value) + `"`
}

// evaluate replaces %generate(secret)% directives with random hex
func (h *Handler) evaluate(vars []manifest.EnvVar) ([]manifest.EnvVar, error) {
	out := make([]manifest.EnvVar, 0, len(vars))
	for _, v := range vars {
		if v.IsComment() {
			out = append(out, v)
			continue
		}

		var genErr error
		value := manifest.GenerateDirective.ReplaceAllStringFunc(v.Value, func(match string) string {
			size, ok, err := manifest.SecretSize(match)
			if err != nil {
				genErr = err
				return match
			}
			if !ok {
				return match
			}
			secret, err := h.secret(size)
			if err != nil {
				genErr = err
				return match
			}
			return secret
		})
		if genErr != nil {
			return nil, genErr
		}
		out = append(out, manifest.EnvVar{Name: v.Name, Value: value})
	}
	return out, nil
}

func (h *Handler) secret(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(h.random, buf); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot generate secret")
	}
	return hex.EncodeToString(buf), nil
}
