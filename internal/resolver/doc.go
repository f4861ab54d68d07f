// Package resolver contains the dependency resolver core for rule assembly.
// It walks a requested id list depth-first, emits every transitive dependency
// before its dependent, deduplicates overlapping requests, and rejects
// dependency cycles before any document leaves the assembler.
package resolver
