// Package app wires the pipeline together: configuration, logger, the
// definition store, and the build, execute, validate, and aggregate phases
// of one pass.
package app
