// Package sqlite provides the SQLite-backed entity store.
//
// The store is the source of truth the snapshot engine reads from. All
// enumerations return the orderings the storage.EntityStore contract
// promises, so callers never re-sort.
package sqlite
