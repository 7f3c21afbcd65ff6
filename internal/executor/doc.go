// Package executor runs computation artifacts to completion.
//
// Artifacts are mutually independent and run concurrently up to a
// configurable worker count, each under its own timeout. A timeout or
// uncaught fault yields an error result for that one artifact and never
// aborts the batch; execution-phase errors do not escape this package.
package executor
