// Package sqlite implements the snapshot cache store on SQLite.
//
// Payloads are opaque blobs keyed by cache key with millisecond expiry
// timestamps. Expired rows are dropped lazily on read.
package sqlite
