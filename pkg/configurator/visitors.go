package configurator

import (
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
)

type applier struct {
	c       *Configurator
	hctx    handlers.Context
	outcome Outcome
}

func (v *applier) record(kind manifest.Kind, r handlers.Result, err error) error {
	if err != nil {
		return err
	}
	v.outcome.add(kind, r)
	return nil
}

func (v *applier) VisitWriteFiles(a *manifest.WriteFiles) error {
	r, err := v.c.files.Apply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *applier) VisitCopyFromPackage(a *manifest.CopyFromPackage) error {
	r, err := v.c.pkgfiles.Apply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *applier) VisitRegisterModules(a *manifest.RegisterModules) error {
	r, err := v.c.modules.Apply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *applier) VisitSetEnvVars(a *manifest.SetEnvVars) error {
	r, err := v.c.envvars.Apply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *applier) VisitGitignoreEntries(a *manifest.GitignoreEntries) error {
	r, err := v.c.gitignore.Apply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *applier) VisitPostInstallMessage(a *manifest.PostInstallMessage) error {
	for _, line := range a.Lines {
		v.outcome.Messages = append(v.outcome.Messages, v.hctx.Expand(line))
	}
	return v.record(a.Kind(), handlers.Result{Message: "message queued"}, nil)
}

type unapplier struct {
	c       *Configurator
	hctx    handlers.Context
	outcome Outcome
}

func (v *unapplier) record(kind manifest.Kind, r handlers.Result, err error) error {
	if err != nil {
		return err
	}
	v.outcome.add(kind, r)
	return nil
}

func (v *unapplier) VisitWriteFiles(a *manifest.WriteFiles) error {
	r, err := v.c.files.Unapply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *unapplier) VisitCopyFromPackage(a *manifest.CopyFromPackage) error {
	r, err := v.c.pkgfiles.Unapply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *unapplier) VisitRegisterModules(a *manifest.RegisterModules) error {
	r, err := v.c.modules.Unapply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *unapplier) VisitSetEnvVars(a *manifest.SetEnvVars) error {
	r, err := v.c.envvars.Unapply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *unapplier) VisitGitignoreEntries(a *manifest.GitignoreEntries) error {
	r, err := v.c.gitignore.Unapply(v.hctx, a)
	return v.record(a.Kind(), r, err)
}

func (v *unapplier) VisitPostInstallMessage(a *manifest.PostInstallMessage) error {
	return v.record(a.Kind(), handlers.Result{}, nil)
}

var (
	_ manifest.ActionVisitor = (*applier)(nil)
	_ manifest.ActionVisitor = (*unapplier)(nil)
)
