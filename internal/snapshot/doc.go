// Package snapshot implements the per-run event snapshot cache.
//
// A snapshot is a denormalized read model combining characters, factions,
// quests and traits of one (event, run) pair, keyed in the cache store as
// event_factions_characters_{slug}_{run}. Snapshots are derived data: they are
// rebuilt from the entity store on demand and can always be discarded.
//
// # Lifecycle
//
// A snapshot is created lazily on the first cache miss, mutated in place by
// the Patcher on targeted entity writes, and deleted wholesale by the
// Dispatcher on structural changes. Freshness is binary: a key is either
// present or absent, there is no version number.
//
// # Consistency
//
// Neither the Builder nor the Patcher takes a store-wide lock. Races between
// a concurrent patch and a concurrent full invalidation resolve last-write-
// wins at the cache store; structural writes always end in an unconditional
// delete, so a patch that wins such a race is overwritten by the next
// structural mutation. When the cache backend offers named locks, patch
// read-modify-write cycles run under a short-lived per-key lock.
package snapshot
