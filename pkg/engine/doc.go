// Package engine runs one batch of host package operations.
//
// Operations are recorded first, without side effects. Run then applies the
// recipes of every install and update in record order, undoes the locked
// recipes of every uninstall, persists the lock store once and returns a
// single Report. Operator messages produced by recipes are held in a
// MessageQueue until the report is built, so nothing is printed while
// packages are processed.
//
// A package that fails (invalid recipe, handler error, catalog required but
// unreachable) is named in the report and its error is aggregated; the other
// packages still run. Only a corrupt lock store, or a validation error in
// strict mode, aborts the batch.
package engine
