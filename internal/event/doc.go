// Package event holds the castlight domain model: events, runs, characters,
// factions, quests, traits, writing questions and registrations.
//
// # Business keys
//
// Every cast-facing entity carries a small stable integer Number next to its
// internal ID. Numbers are unique within an event's inheritance scope and are
// the only cross-reference exposed to players and organizers; internal ids
// never leave the storage layer. Renumbering is a structural change and is
// handled by full cache invalidation, never by patching.
//
// # Campaign families
//
// Events form shallow trees: an event may declare a parent, and events sharing
// a parent are siblings. Characters and factions can be inherited from the
// parent unless the campaign_independent_characters config opts the event out.
package event
