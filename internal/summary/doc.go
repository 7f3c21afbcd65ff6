// Package summary provides read-only accuracy statistics over result
// records. It never mutates what it reads.
package summary
