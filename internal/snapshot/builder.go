package snapshot

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/storage"
)

// Builder assembles full snapshots from the entity store.
//
// Build is deterministic for a fixed store state and never mutates the
// store. Single missing referenced entities degrade the snapshot (that
// element is skipped); only enumeration failures abort a build.
type Builder struct {
	store  storage.EntityStore
	cache  *Cache
	tracer trace.Tracer
}

// NewBuilder constructs a snapshot builder over the entity store.
func NewBuilder(store storage.EntityStore, cache *Cache) *Builder {
	return &Builder{
		store:  store,
		cache:  cache,
		tracer: otel.Tracer("castlight/snapshot"),
	}
}

// Ensure returns a context carrying the pair's snapshot, building and
// caching it on miss.
func (b *Builder) Ensure(ctx context.Context, ev event.Event, run event.Run) (context.Context, *Snapshot, error) {
	if snap, ok := b.cache.Lookup(ctx, ev.Slug, run.Number); ok {
		return WithSnapshot(ctx, snap), snap, nil
	}
	snap, err := b.Build(ctx, ev, run)
	if err != nil {
		return ctx, nil, err
	}
	b.cache.Put(ctx, ev.Slug, run.Number, snap)
	return WithSnapshot(ctx, snap), snap, nil
}

// Build assembles the full snapshot for one (event, run) pair.
func (b *Builder) Build(ctx context.Context, ev event.Event, run event.Run) (*Snapshot, error) {
	ctx, span := b.tracer.Start(ctx, "snapshot.Build", trace.WithAttributes(
		attribute.String("event.slug", ev.Slug),
		attribute.Int("run.number", run.Number),
	))
	defer span.End()

	snap := NewSnapshot()
	source := b.sourceSlug(ctx, ev)
	regs := b.registrationsByCharacter(ctx, run)

	if err := b.buildCharacters(ctx, snap, ev, source, regs); err != nil {
		return nil, err
	}
	if ev.Features.Character {
		b.buildFields(ctx, snap, source)
	}
	if err := b.buildFactions(ctx, snap, ev, source); err != nil {
		return nil, err
	}
	if ev.Features.QuestBuilder {
		b.buildQuests(ctx, snap, run, source)
	}
	return snap, nil
}

// sourceSlug resolves which event's elements feed the snapshot: campaign
// events inherit the parent's cast unless configured independent.
func (b *Builder) sourceSlug(ctx context.Context, ev event.Event) string {
	if ev.ParentSlug == "" {
		return ev.Slug
	}
	value, present, err := b.store.Config(ctx, ev.Slug, event.ConfigIndependentCharacters)
	if err != nil {
		present = false
	}
	if event.BoolConfig(value, present, false) {
		return ev.Slug
	}
	return ev.ParentSlug
}

func (b *Builder) registrationsByCharacter(ctx context.Context, run event.Run) map[int64]event.Registration {
	byCharacter := make(map[int64]event.Registration)
	regs, err := b.store.Registrations(ctx, run.ID)
	if err != nil {
		return byCharacter
	}
	for _, reg := range regs {
		byCharacter[reg.CharacterID] = reg
	}
	return byCharacter
}

func (b *Builder) buildCharacters(ctx context.Context, snap *Snapshot, ev event.Event, source string, regs map[int64]event.Registration) error {
	chars, err := b.store.Characters(ctx, source)
	if err != nil {
		return err
	}

	value, present, cfgErr := b.store.Config(ctx, ev.Slug, event.ConfigGalleryHideUncasted)
	if cfgErr != nil {
		present = false
	}
	hideUncasted := event.BoolConfig(value, present, false)

	for _, ch := range chars {
		if ch.Hide {
			continue
		}
		// Mirror sheets duplicate an already-cast character in this run.
		if ev.Features.Mirror && ch.MirrorID != 0 {
			if _, cast := regs[ch.MirrorID]; cast {
				continue
			}
		}

		view := projectCharacter(ch)
		augmentPlayer(view, regs, ch.ID, hideUncasted)

		snap.Chars[ch.Number] = view
		snap.CharMapping[ch.Number] = ch.ID
		if ch.Number > snap.MaxChNumber {
			snap.MaxChNumber = ch.Number
		}
	}
	return nil
}

// projectCharacter produces the entity's own display view, before player and
// field augmentation.
func projectCharacter(ch event.Character) *CharacterView {
	return &CharacterView{
		ID:       ch.ID,
		Number:   ch.Number,
		Name:     ch.Name,
		Title:    ch.Title,
		Teaser:   ch.Teaser,
		Text:     ch.Text,
		Factions: ch.FactionNumbers(),
	}
}

// augmentPlayer fills the player-derived view fields from the run's
// registration, marking uncast characters hidden when the event asks for it.
func augmentPlayer(view *CharacterView, regs map[int64]event.Registration, characterID int64, hideUncasted bool) {
	reg, cast := regs[characterID]
	if cast {
		view.PlayerID = reg.PlayerID
		view.PlayerFull = reg.PlayerFull
		view.PlayerProf = reg.PlayerProf
		return
	}
	if hideUncasted {
		view.Hide = true
	}
}

// buildFields joins writing-question answers into each character view.
// Answers referencing characters absent from the snapshot are skipped.
func (b *Builder) buildFields(ctx context.Context, snap *Snapshot, source string) {
	byID := make(map[int64]*CharacterView, len(snap.Chars))
	for number, id := range snap.CharMapping {
		if view, ok := snap.Chars[number]; ok {
			byID[id] = view
		}
	}
	b.joinFields(ctx, byID, source)
}

// joinFields merges visible writing-question answers into the given views,
// keyed by internal character id.
func (b *Builder) joinFields(ctx context.Context, byID map[int64]*CharacterView, source string) {
	questions, err := b.store.Questions(ctx, source)
	if err != nil {
		return
	}
	visible := make(map[string]event.Question, len(questions))
	for _, q := range questions {
		if q.Visible {
			visible[q.UUID] = q
		}
	}

	texts, err := b.store.TextAnswers(ctx, source)
	if err == nil {
		for _, answer := range texts {
			if _, ok := visible[answer.QuestionUUID]; !ok {
				continue
			}
			view, ok := byID[answer.CharacterID]
			if !ok {
				continue
			}
			if view.Fields == nil {
				view.Fields = make(map[string]FieldValue)
			}
			// Text answers overwrite, they never append.
			view.Fields[answer.QuestionUUID] = FieldValue{Text: answer.Text}
		}
	}

	choices, err := b.store.ChoiceAnswers(ctx, source)
	if err == nil {
		for _, answer := range choices {
			if _, ok := visible[answer.QuestionUUID]; !ok {
				continue
			}
			view, ok := byID[answer.CharacterID]
			if !ok {
				continue
			}
			if view.Fields == nil {
				view.Fields = make(map[string]FieldValue)
			}
			value := view.Fields[answer.QuestionUUID]
			value.Options = append(value.Options, answer.OptionUUID)
			view.Fields[answer.QuestionUUID] = value
		}
	}
}

// buildFactions recomputes the whole faction section from the snapshot's
// character views. It is reused by the patcher after character merges.
func (b *Builder) buildFactions(ctx context.Context, snap *Snapshot, ev event.Event, source string) error {
	snap.Factions = make(map[int]*FactionView)
	snap.FactionsTyp = make(map[event.FactionType][]int)
	snap.FacMapping = make(map[int]int64)

	numbers := snap.CharacterNumbers()

	if !ev.Features.Faction {
		// Single synthetic bucket holding the entire visible cast. Like any
		// other faction it is pruned when memberless.
		var members []int
		for _, number := range numbers {
			if view := snap.Chars[number]; !view.Hide {
				members = append(members, number)
			}
		}
		if len(members) == 0 {
			return nil
		}
		snap.Factions[0] = &FactionView{Number: 0, Typ: event.FactionTypePrimary, Characters: members}
		snap.FactionsTyp[event.FactionTypePrimary] = []int{0}
		return nil
	}

	var unassigned []int
	for _, number := range numbers {
		view := snap.Chars[number]
		if view.Hide {
			continue
		}
		if view.HasFaction(0) {
			unassigned = append(unassigned, number)
		}
	}
	if len(unassigned) > 0 {
		snap.Factions[0] = &FactionView{Number: 0, Typ: event.FactionTypePrimary, Characters: unassigned}
		snap.FactionsTyp[event.FactionTypePrimary] = append(snap.FactionsTyp[event.FactionTypePrimary], 0)
	}

	factions, err := b.store.Factions(ctx, source)
	if err != nil {
		return err
	}
	for _, f := range factions {
		var members []int
		for _, number := range numbers {
			view := snap.Chars[number]
			if view.Hide {
				continue
			}
			if view.HasFaction(f.Number) {
				members = append(members, number)
			}
		}
		// Factions without members are pruned from the snapshot.
		if len(members) == 0 {
			continue
		}
		snap.Factions[f.Number] = &FactionView{
			Number:     f.Number,
			Name:       f.Name,
			Typ:        f.Typ,
			Teaser:     f.Teaser,
			Characters: members,
		}
		snap.FacMapping[f.Number] = f.ID
		snap.FactionsTyp[f.Typ] = append(snap.FactionsTyp[f.Typ], f.Number)
	}
	return nil
}

// buildQuests assembles the quest-builder sections: quest types, quests,
// traits, trait relations and per-run trait assignments.
func (b *Builder) buildQuests(ctx context.Context, snap *Snapshot, run event.Run, source string) {
	snap.QuestTypes = make(map[int]*QuestTypeView)
	snap.Quests = make(map[int]*QuestView)
	snap.Traits = make(map[int]*TraitView)

	if questTypes, err := b.store.QuestTypes(ctx, source); err == nil {
		for _, qt := range questTypes {
			snap.QuestTypes[qt.Number] = &QuestTypeView{Number: qt.Number, Name: qt.Name}
		}
	}
	if quests, err := b.store.Quests(ctx, source); err == nil {
		for _, q := range quests {
			if q.Hide {
				continue
			}
			snap.Quests[q.Number] = &QuestView{
				Number: q.Number,
				Typ:    q.TypNumber,
				Name:   q.Name,
				Teaser: q.Teaser,
			}
		}
	}
	if traits, err := b.store.Traits(ctx, source); err == nil {
		for _, tr := range traits {
			if tr.Hide {
				continue
			}
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
			if tr.Number > snap.MaxTrNumber {
				snap.MaxTrNumber = tr.Number
			}
		}
	}

	if relations, err := b.store.TraitRelations(ctx, source); err == nil {
		for _, rel := range relations {
			if rel.First == rel.Second {
				continue
			}
			if view, ok := snap.Traits[rel.First]; ok {
				view.Traits = append(view.Traits, rel.Second)
			}
			if view, ok := snap.Traits[rel.Second]; ok {
				view.Traits = append(view.Traits, rel.First)
			}
		}
		for _, view := range snap.Traits {
			sort.Ints(view.Traits)
		}
	}

	// Assignments reference players, not characters: resolve through the
	// stable player-identity string on the augmented views.
	byPlayer := make(map[string]int)
	for _, number := range snap.CharacterNumbers() {
		if view := snap.Chars[number]; view.PlayerID != "" {
			byPlayer[view.PlayerID] = number
		}
	}
	if assignments, err := b.store.TraitAssignments(ctx, run.ID); err == nil {
		for _, assignment := range assignments {
			if !assignment.Active {
				continue
			}
			traitView, ok := snap.Traits[assignment.TraitNumber]
			if !ok {
				continue
			}
			number, ok := byPlayer[assignment.PlayerID]
			if !ok {
				continue
			}
			view := snap.Chars[number]
			view.Traits = append(view.Traits, assignment.TraitNumber)
			traitView.Char = number
		}
		for _, number := range snap.CharacterNumbers() {
			sort.Ints(snap.Chars[number].Traits)
		}
	}
}
