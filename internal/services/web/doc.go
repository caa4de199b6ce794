// Package web hosts the read-side HTTP API over cached snapshots.
//
// Every endpoint resolves its (event, run) pair, ensures the pair's snapshot
// through the builder, and serves a section of it as JSON. Handlers never
// write to the entity store.
package web
