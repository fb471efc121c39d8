// Package handlers holds what every action handler shares: the context a
// handler runs in and the result it reports.
//
// Each action kind has its own handler package (files, pkgfiles, modules,
// envvars, gitignore). Handlers only touch the project tree through the
// context's filesystem and write every file with a temp-file-then-rename so a
// failing handler never leaves a half-written file behind.
package handlers
