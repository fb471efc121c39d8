// Package bundles synthesizes recipes for packages that have none.
//
// A package either declares its module classes explicitly in its extra
// metadata (extra.<extra-key>.bundles) or the classes are guessed from its
// psr-4 and psr-0 autoload namespaces. Guessed classes are only kept when
// their source file exists in the vendor directory and extends the kernel
// bundle base class; on uninstall the code may already be gone, so the check
// is skipped.
package bundles
