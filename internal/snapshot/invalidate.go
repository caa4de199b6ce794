package snapshot

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/media"
	"github.com/ebriony/castlight/internal/storage"
	"github.com/ebriony/castlight/internal/telemetry"
)

// Dispatcher decides, per entity write, between a targeted patch and a full
// invalidation, and propagates full invalidations across the campaign
// family.
//
// The decision rule compares a per-kind whitelist of attributes: structural
// changes (business-key renumbering, identity-affecting links) break the
// patcher's merge-by-number assumption and force a full invalidate; display
// changes delegate to the patcher; anything else is a no-op.
type Dispatcher struct {
	store   storage.EntityStore
	cache   *Cache
	patcher *Patcher
	media   media.Store
	emitter *telemetry.Emitter
	tracer  trace.Tracer
}

// NewDispatcher constructs the invalidation dispatcher.
func NewDispatcher(store storage.EntityStore, cache *Cache, patcher *Patcher, mediaStore media.Store, emitter *telemetry.Emitter) *Dispatcher {
	return &Dispatcher{
		store:   store,
		cache:   cache,
		patcher: patcher,
		media:   mediaStore,
		emitter: emitter,
		tracer:  otel.Tracer("castlight/snapshot"),
	}
}

// CharacterSaved reacts to a character write. A nil before marks a new
// entity.
func (d *Dispatcher) CharacterSaved(ctx context.Context, ev event.Event, before *event.Character, after event.Character) {
	if before == nil || characterStructuralChanged(*before, after) {
		d.InvalidateRunsOf(ctx, ev)
		return
	}
	if characterDisplayChanged(*before, after) {
		d.patchRuns(ctx, ev, after)
	}
}

// FactionSaved reacts to a faction write.
func (d *Dispatcher) FactionSaved(ctx context.Context, ev event.Event, before *event.Faction, after event.Faction) {
	if before == nil || factionStructuralChanged(*before, after) {
		d.InvalidateRunsOf(ctx, ev)
		return
	}
	if before.Name != after.Name || before.Teaser != after.Teaser {
		d.patchRuns(ctx, ev, after)
	}
}

// QuestSaved reacts to a quest write.
func (d *Dispatcher) QuestSaved(ctx context.Context, ev event.Event, before *event.Quest, after event.Quest) {
	if before == nil || questStructuralChanged(*before, after) {
		d.InvalidateRunsOf(ctx, ev)
		return
	}
	if before.Name != after.Name || before.Teaser != after.Teaser {
		d.patchRuns(ctx, ev, after)
	}
}

// TraitSaved reacts to a trait write.
func (d *Dispatcher) TraitSaved(ctx context.Context, ev event.Event, before *event.Trait, after event.Trait) {
	if before == nil || traitStructuralChanged(*before, after) {
		d.InvalidateRunsOf(ctx, ev)
		return
	}
	if before.Name != after.Name || before.Teaser != after.Teaser {
		d.patchRuns(ctx, ev, after)
	}
}

// RegistrationChanged reacts to a cast relation write or delete on one run.
// Relation changes never restructure the snapshot; they always patch the
// affected character's player-derived fields.
func (d *Dispatcher) RegistrationChanged(ctx context.Context, ev event.Event, run event.Run, reg event.Registration) {
	d.patcher.Registration(ctx, ev, run, reg)
}

// CampaignChanged reacts to event-level writes (feature flags, parent
// links, configs) with a campaign-wide full invalidation.
func (d *Dispatcher) CampaignChanged(ctx context.Context, ev event.Event) {
	d.InvalidateRunsOf(ctx, ev)
}

// InvalidateRunsOf fully invalidates every run of the event and of its
// campaign family: children, and through the parent every sibling and the
// parent itself. Inherited casts make any of those snapshots stale.
func (d *Dispatcher) InvalidateRunsOf(ctx context.Context, ev event.Event) {
	ctx, span := d.tracer.Start(ctx, "snapshot.InvalidateRunsOf", trace.WithAttributes(
		attribute.String("event.slug", ev.Slug),
	))
	defer span.End()

	for _, slug := range d.familySlugs(ctx, ev) {
		runs, err := d.store.Runs(ctx, slug)
		if err != nil {
			d.warn(ctx, "invalidate_runs", fmt.Sprintf("list runs of %s: %v", slug, err))
			continue
		}
		for _, run := range runs {
			d.InvalidateRun(ctx, slug, run.Number)
		}
	}
}

// InvalidateRun fully invalidates a single run's snapshot and deletes the
// run's derived media exports, which embedded the now-stale snapshot.
func (d *Dispatcher) InvalidateRun(ctx context.Context, eventSlug string, runNumber int) {
	d.cache.Drop(ctx, eventSlug, runNumber)
	if d.media == nil {
		return
	}
	if err := d.media.DeleteRunExports(ctx, eventSlug, runNumber); err != nil {
		d.warn(ctx, "delete_exports", fmt.Sprintf("%s run %d: %v", eventSlug, runNumber, err))
	}
}

// patchRuns applies a display patch to every run of the entity's event, and
// to runs of child events that inherit its elements. Children configured
// independent build from their own rows and are left alone.
func (d *Dispatcher) patchRuns(ctx context.Context, ev event.Event, changed any) {
	d.patchEventRuns(ctx, ev, changed)

	children, err := d.store.ChildEvents(ctx, ev.Slug)
	if err != nil {
		d.warn(ctx, "patch_runs", fmt.Sprintf("list children of %s: %v", ev.Slug, err))
		return
	}
	for _, child := range children {
		if d.independentCharacters(ctx, child) {
			continue
		}
		d.patchEventRuns(ctx, child, changed)
	}
}

func (d *Dispatcher) patchEventRuns(ctx context.Context, ev event.Event, changed any) {
	runs, err := d.store.Runs(ctx, ev.Slug)
	if err != nil {
		d.warn(ctx, "patch_runs", fmt.Sprintf("list runs of %s: %v", ev.Slug, err))
		return
	}
	for _, run := range runs {
		d.patcher.Apply(ctx, ev, run, changed)
	}
}

func (d *Dispatcher) independentCharacters(ctx context.Context, ev event.Event) bool {
	value, present, err := d.store.Config(ctx, ev.Slug, event.ConfigIndependentCharacters)
	if err != nil {
		present = false
	}
	return event.BoolConfig(value, present, false)
}

// familySlugs returns the campaign family of ev, ev first, deduplicated.
func (d *Dispatcher) familySlugs(ctx context.Context, ev event.Event) []string {
	slugs := []string{ev.Slug}
	appendSlug := func(slug string) {
		if slug != "" && !slices.Contains(slugs, slug) {
			slugs = append(slugs, slug)
		}
	}

	if children, err := d.store.ChildEvents(ctx, ev.Slug); err == nil {
		for _, child := range children {
			appendSlug(child.Slug)
		}
	}
	if ev.ParentSlug != "" {
		appendSlug(ev.ParentSlug)
		if siblings, err := d.store.ChildEvents(ctx, ev.ParentSlug); err == nil {
			for _, sibling := range siblings {
				appendSlug(sibling.Slug)
			}
		}
	}
	return slugs
}

func (d *Dispatcher) warn(ctx context.Context, action, detail string) {
	_ = d.emitter.Emit(ctx, telemetry.Event{
		Component: "snapshot",
		Action:    action,
		Detail:    detail,
		Severity:  telemetry.SeverityWarn,
	})
}

func characterStructuralChanged(before, after event.Character) bool {
	return before.Number != after.Number ||
		before.PlayerID != after.PlayerID ||
		before.MirrorID != after.MirrorID ||
		before.Hide != after.Hide
}

func characterDisplayChanged(before, after event.Character) bool {
	return before.Name != after.Name ||
		before.Title != after.Title ||
		before.Teaser != after.Teaser ||
		before.Text != after.Text ||
		!slices.Equal(before.Factions, after.Factions)
}

func factionStructuralChanged(before, after event.Faction) bool {
	return before.Number != after.Number ||
		before.Typ != after.Typ ||
		before.Order != after.Order
}

func questStructuralChanged(before, after event.Quest) bool {
	return before.Number != after.Number ||
		before.TypNumber != after.TypNumber ||
		before.Hide != after.Hide
}

func traitStructuralChanged(before, after event.Trait) bool {
	return before.Number != after.Number ||
		before.QuestNumber != after.QuestNumber ||
		before.Hide != after.Hide
}
