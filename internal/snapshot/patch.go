package snapshot

import (
	"context"

	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/storage"
)

// Patcher applies targeted in-place updates to cached snapshots.
//
// Patching is additive: it merges and creates entries but never removes
// them. Removal only happens through full invalidation. When the snapshot
// key is absent every patch is a no-op, because the next read rebuilds
// fresh anyway.
type Patcher struct {
	store   storage.EntityStore
	cache   *Cache
	builder *Builder
}

// NewPatcher constructs a patch applier sharing the builder's projection
// helpers.
func NewPatcher(store storage.EntityStore, cache *Cache, builder *Builder) *Patcher {
	return &Patcher{store: store, cache: cache, builder: builder}
}

// Apply dispatches one changed entity to the per-kind patch rule. Entities
// without a patch rule are ignored.
func (p *Patcher) Apply(ctx context.Context, ev event.Event, run event.Run, changed any) {
	switch entity := changed.(type) {
	case event.Character:
		p.Character(ctx, ev, run, entity)
	case event.Faction:
		p.Faction(ctx, ev, run, entity)
	case event.Registration:
		p.Registration(ctx, ev, run, entity)
	case event.Quest:
		p.Quest(ctx, ev, run, entity)
	case event.Trait:
		p.Trait(ctx, ev, run, entity)
	}
}

// Character recomputes one character's view and merges it, then recomputes
// the whole faction section: membership is derived from the views, so any
// character merge can shift it.
func (p *Patcher) Character(ctx context.Context, ev event.Event, run event.Run, ch event.Character) {
	p.cache.withLock(ctx, ev.Slug, run.Number, func() {
		snap, ok := p.cache.Lookup(ctx, ev.Slug, run.Number)
		if !ok {
			return
		}

		source := p.builder.sourceSlug(ctx, ev)
		regs := p.builder.registrationsByCharacter(ctx, run)

		value, present, err := p.store.Config(ctx, ev.Slug, event.ConfigGalleryHideUncasted)
		if err != nil {
			present = false
		}
		hideUncasted := event.BoolConfig(value, present, false)

		view := projectCharacter(ch)
		augmentPlayer(view, regs, ch.ID, hideUncasted)
		p.builder.joinFields(ctx, map[int64]*CharacterView{ch.ID: view}, source)

		// Trait linkage lives outside the character patch scope; carry it
		// over from the previous view.
		if previous, ok := snap.Chars[ch.Number]; ok {
			view.Traits = previous.Traits
		}
		snap.Chars[ch.Number] = view
		snap.CharMapping[ch.Number] = ch.ID
		if ch.Number > snap.MaxChNumber {
			snap.MaxChNumber = ch.Number
		}

		if err := p.builder.buildFactions(ctx, snap, ev, source); err != nil {
			return
		}
		p.cache.Put(ctx, ev.Slug, run.Number, snap)
	})
}

// Faction merges display attributes into the cached faction entry.
// Membership is not recomputed: a faction-only edit cannot change who
// belongs to it.
func (p *Patcher) Faction(ctx context.Context, ev event.Event, run event.Run, f event.Faction) {
	p.cache.withLock(ctx, ev.Slug, run.Number, func() {
		snap, ok := p.cache.Lookup(ctx, ev.Slug, run.Number)
		if !ok {
			return
		}

		if view, ok := snap.Factions[f.Number]; ok {
			view.Name = f.Name
			view.Teaser = f.Teaser
		} else {
			snap.Factions[f.Number] = &FactionView{
				Number: f.Number,
				Name:   f.Name,
				Typ:    f.Typ,
				Teaser: f.Teaser,
			}
			snap.FacMapping[f.Number] = f.ID
		}
		p.cache.Put(ctx, ev.Slug, run.Number, snap)
	})
}

// Registration recomputes the affected character's player-derived fields,
// including the uncast-hiding flag. Trait and quest sections are untouched;
// the faction section is recomputed when the flag flips, because membership
// is derived from the visible views.
func (p *Patcher) Registration(ctx context.Context, ev event.Event, run event.Run, reg event.Registration) {
	p.cache.withLock(ctx, ev.Slug, run.Number, func() {
		snap, ok := p.cache.Lookup(ctx, ev.Slug, run.Number)
		if !ok {
			return
		}
		view, ok := snap.CharacterByID(reg.CharacterID)
		if !ok {
			return
		}

		value, present, err := p.store.Config(ctx, ev.Slug, event.ConfigGalleryHideUncasted)
		if err != nil {
			present = false
		}
		hideUncasted := event.BoolConfig(value, present, false)

		// Re-read the relation: the triggering write may have been a delete.
		// A cached view is only ever hidden through the uncast rule (entity-
		// hidden characters never enter the snapshot), so the flag resets
		// before augmentation re-derives it.
		regs := p.builder.registrationsByCharacter(ctx, run)
		wasHidden := view.Hide
		view.PlayerID = ""
		view.PlayerFull = ""
		view.PlayerProf = ""
		view.Hide = false
		augmentPlayer(view, regs, reg.CharacterID, hideUncasted)

		if view.Hide != wasHidden {
			if err := p.builder.buildFactions(ctx, snap, ev, p.builder.sourceSlug(ctx, ev)); err != nil {
				return
			}
		}
		p.cache.Put(ctx, ev.Slug, run.Number, snap)
	})
}

// Quest merges display attributes into the cached quest entry. Snapshots
// without quest sections (quest-builder feature off) are left alone.
func (p *Patcher) Quest(ctx context.Context, ev event.Event, run event.Run, q event.Quest) {
	p.cache.withLock(ctx, ev.Slug, run.Number, func() {
		snap, ok := p.cache.Lookup(ctx, ev.Slug, run.Number)
		if !ok || snap.Quests == nil {
			return
		}

		if view, ok := snap.Quests[q.Number]; ok {
			view.Name = q.Name
			view.Teaser = q.Teaser
		} else {
			snap.Quests[q.Number] = &QuestView{
				Number: q.Number,
				Typ:    q.TypNumber,
				Name:   q.Name,
				Teaser: q.Teaser,
			}
		}
		p.cache.Put(ctx, ev.Slug, run.Number, snap)
	})
}

// Trait merges display attributes into the cached trait entry, mirroring
// the quest rule.
func (p *Patcher) Trait(ctx context.Context, ev event.Event, run event.Run, tr event.Trait) {
	p.cache.withLock(ctx, ev.Slug, run.Number, func() {
		snap, ok := p.cache.Lookup(ctx, ev.Slug, run.Number)
		if !ok || snap.Traits == nil {
			return
		}

		if view, ok := snap.Traits[tr.Number]; ok {
			view.Name = tr.Name
			view.Teaser = tr.Teaser
		} else {
			view := &TraitView{
				Number: tr.Number,
				Quest:  tr.QuestNumber,
				Name:   tr.Name,
				Teaser: tr.Teaser,
			}
			if quest, ok := snap.Quests[tr.QuestNumber]; ok {
				view.Typ = quest.Typ
			}
			snap.Traits[tr.Number] = view
		}
		p.cache.Put(ctx, ev.Slug, run.Number, snap)
	})
}
