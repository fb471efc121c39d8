// Package configurator applies and undoes manifests against the project.
//
// Each action is dispatched through manifest.ActionVisitor to the handler
// of its kind. Actions run in manifest order and the first failure stops
// the manifest with an ACTION_EXECUTION error; actions that already ran are
// not rolled back. Post-install messages are never printed here: their
// lines are expanded and returned in the Outcome for the engine to queue.
package configurator
