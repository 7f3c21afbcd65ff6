// Package result turns raw execution output into canonical, persisted
// result records.
//
// The validator owns the status taxonomy: "completed" means the computation
// ran and met its accuracy target, "warning" means it ran but missed the
// target, and "error" is reserved strictly for execution failures. A missing
// or malformed execution output synthesizes an error record rather than
// leaving a gap. Stores replace a prior record with the same id atomically.
package result
