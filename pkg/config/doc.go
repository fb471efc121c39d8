// Package config resolves the immutable Options of a dorecipe run.
//
// Options are layered with koanf, later layers overriding earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. dorecipe.toml at the project root, if present
//  3. the root package's extra section (e.g. extra.symfony.allow-contrib)
//  4. DORECIPE_* environment variables (DORECIPE_ALLOW_CONTRIB=true,
//     DORECIPE_CATALOG__ENABLED=false)
//  5. explicit overrides, typically command-line flags
//
// The result is validated once and then only read.
package config
