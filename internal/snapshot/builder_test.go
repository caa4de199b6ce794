package snapshot

import (
	"bytes"
	"context"
	"testing"

	cachemem "github.com/ebriony/castlight/internal/cache/memory"
	"github.com/ebriony/castlight/internal/event"
	storagemem "github.com/ebriony/castlight/internal/storage/memory"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func newTestBuilder(store *storagemem.Store) (*Builder, *Cache) {
	c := NewCache(cachemem.New(), 0, nil)
	return NewBuilder(store, c), c
}

// seedGallery seeds the grouping fixture: characters 1 and 3 without a
// faction, character 2 in faction 5.
func seedGallery(t *testing.T) (*storagemem.Store, event.Event, event.Run) {
	t.Helper()
	ctx := context.Background()
	store := storagemem.New()

	ev := event.Event{
		Slug:     "midnight",
		Name:     "Midnight Court",
		Features: event.Features{Character: true, Faction: true},
	}
	run := event.Run{ID: 1, EventSlug: "midnight", Number: 1}
	must(t, store.PutEvent(ctx, ev))
	must(t, store.PutRun(ctx, run))

	must(t, store.PutCharacter(ctx, event.Character{ID: 101, EventSlug: "midnight", Number: 1, Name: "Aldric"}))
	must(t, store.PutCharacter(ctx, event.Character{ID: 102, EventSlug: "midnight", Number: 2, Name: "Brenna", Factions: []int{5}}))
	must(t, store.PutCharacter(ctx, event.Character{ID: 103, EventSlug: "midnight", Number: 3, Name: "Corin"}))
	must(t, store.PutFaction(ctx, event.Faction{ID: 501, EventSlug: "midnight", Number: 5, Name: "Court", Typ: event.FactionTypePrimary, Order: 1}))

	return store, ev, run
}

func TestBuildGroupsFactions(t *testing.T) {
	store, ev, run := seedGallery(t)
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(context.Background(), ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if got := snap.Factions[5].Characters; len(got) != 1 || got[0] != 2 {
		t.Fatalf("faction 5 members = %v, want [2]", got)
	}
	if got := snap.Factions[0].Characters; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("synthetic faction members = %v, want [1 3]", got)
	}
	if got := snap.FacMapping[5]; got != 501 {
		t.Fatalf("fac_mapping[5] = %d, want 501", got)
	}
	if _, ok := snap.FacMapping[0]; ok {
		t.Fatal("synthetic faction must not appear in fac_mapping")
	}
	if snap.MaxChNumber != 3 {
		t.Fatalf("max_ch_number = %d, want 3", snap.MaxChNumber)
	}
}

func TestBuildPrunesEmptyFactions(t *testing.T) {
	store, ev, run := seedGallery(t)
	ctx := context.Background()
	must(t, store.PutFaction(ctx, event.Faction{ID: 502, EventSlug: "midnight", Number: 7, Name: "Empty", Typ: event.FactionTypeSecondary}))
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := snap.Factions[7]; ok {
		t.Fatal("memberless faction must be pruned")
	}
	if got := snap.FactionsTyp[event.FactionTypeSecondary]; len(got) != 0 {
		t.Fatalf("factions_typ secondary = %v, want empty", got)
	}
}

func TestBuildFactionFeatureOff(t *testing.T) {
	store, ev, run := seedGallery(t)
	ev.Features.Faction = false
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(context.Background(), ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(snap.Factions) != 1 {
		t.Fatalf("factions = %d entries, want only the synthetic bucket", len(snap.Factions))
	}
	if got := snap.Factions[0].Characters; len(got) != 3 {
		t.Fatalf("synthetic bucket members = %v, want all three", got)
	}
}

func TestBuildSkipsHiddenCharacters(t *testing.T) {
	store, ev, run := seedGallery(t)
	ctx := context.Background()
	must(t, store.PutCharacter(ctx, event.Character{ID: 104, EventSlug: "midnight", Number: 4, Name: "Ghost", Hide: true}))
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := snap.Chars[4]; ok {
		t.Fatal("hidden character must not enter the snapshot")
	}
	if snap.MaxChNumber != 3 {
		t.Fatalf("max_ch_number = %d, want 3", snap.MaxChNumber)
	}
}

func TestBuildMirrorDroppedWhenOriginalCast(t *testing.T) {
	store, ev, run := seedGallery(t)
	ev.Features.Mirror = true
	ctx := context.Background()
	must(t, store.PutCharacter(ctx, event.Character{ID: 104, EventSlug: "midnight", Number: 4, Name: "Brenna's Double", MirrorID: 102}))
	must(t, store.PutRegistration(ctx, event.Registration{RunID: 1, CharacterID: 102, PlayerID: "player-1", PlayerFull: "Iris Vane"}))
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := snap.Chars[4]; ok {
		t.Fatal("mirror of a cast character must be dropped")
	}
	if got := snap.Chars[2].PlayerFull; got != "Iris Vane" {
		t.Fatalf("player_full = %q, want %q", got, "Iris Vane")
	}

	// A run without the registration keeps the mirror sheet.
	must(t, store.PutRun(ctx, event.Run{ID: 2, EventSlug: "midnight", Number: 2}))
	snap2, err := builder.Build(ctx, ev, event.Run{ID: 2, EventSlug: "midnight", Number: 2})
	if err != nil {
		t.Fatalf("build run 2: %v", err)
	}
	if _, ok := snap2.Chars[4]; !ok {
		t.Fatal("mirror must stay while the original is uncast")
	}
}

func TestBuildHideUncastedConfig(t *testing.T) {
	store, ev, run := seedGallery(t)
	ctx := context.Background()
	must(t, store.SetConfig(ctx, "midnight", event.ConfigGalleryHideUncasted, "true"))
	must(t, store.PutRegistration(ctx, event.Registration{RunID: 1, CharacterID: 102, PlayerID: "player-1"}))
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !snap.Chars[1].Hide {
		t.Fatal("uncast character must be hidden under the config")
	}
	if snap.Chars[2].Hide {
		t.Fatal("cast character must stay visible")
	}
	// Hidden views stay in chars but leave faction membership, so the
	// emptied synthetic bucket disappears.
	if _, ok := snap.Factions[0]; ok {
		t.Fatal("synthetic bucket must be dropped once all its members hide")
	}
	if _, ok := snap.Chars[1]; !ok {
		t.Fatal("hidden view must remain addressable in chars")
	}
}

func TestBuildFieldsVisibleQuestionsOnly(t *testing.T) {
	store, ev, run := seedGallery(t)
	ctx := context.Background()
	must(t, store.PutQuestion(ctx, event.Question{UUID: "q-text", EventSlug: "midnight", Order: 1, Typ: event.QuestionTypeText, Visible: true}))
	must(t, store.PutQuestion(ctx, event.Question{UUID: "q-hidden", EventSlug: "midnight", Order: 2, Typ: event.QuestionTypeText, Visible: false}))
	must(t, store.PutQuestion(ctx, event.Question{UUID: "q-choice", EventSlug: "midnight", Order: 3, Typ: event.QuestionTypeChoice, Visible: true}))
	must(t, store.PutTextAnswer(ctx, event.TextAnswer{QuestionUUID: "q-text", CharacterID: 101, Text: "A quiet debt"}))
	must(t, store.PutTextAnswer(ctx, event.TextAnswer{QuestionUUID: "q-hidden", CharacterID: 101, Text: "never shown"}))
	must(t, store.PutChoiceAnswer(ctx, event.ChoiceAnswer{QuestionUUID: "q-choice", CharacterID: 101, OptionUUID: "opt-b", OptionOrder: 2}))
	must(t, store.PutChoiceAnswer(ctx, event.ChoiceAnswer{QuestionUUID: "q-choice", CharacterID: 101, OptionUUID: "opt-a", OptionOrder: 1}))
	// Answer referencing a character outside the snapshot is skipped.
	must(t, store.PutTextAnswer(ctx, event.TextAnswer{QuestionUUID: "q-text", CharacterID: 999, Text: "orphan"}))
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fields := snap.Chars[1].Fields
	if got := fields["q-text"].Text; got != "A quiet debt" {
		t.Fatalf("text answer = %q, want %q", got, "A quiet debt")
	}
	if _, ok := fields["q-hidden"]; ok {
		t.Fatal("answer of an invisible question must be skipped")
	}
	options := fields["q-choice"].Options
	if len(options) != 2 || options[0] != "opt-a" || options[1] != "opt-b" {
		t.Fatalf("choice options = %v, want option order", options)
	}
}

func TestBuildInheritsParentCast(t *testing.T) {
	ctx := context.Background()
	store := storagemem.New()
	parent := event.Event{Slug: "camp", Name: "Campaign", Features: event.Features{Character: true}}
	child := event.Event{Slug: "camp-iii", Name: "Campaign III", ParentSlug: "camp", Features: event.Features{Character: true}}
	must(t, store.PutEvent(ctx, parent))
	must(t, store.PutEvent(ctx, child))
	must(t, store.PutRun(ctx, event.Run{ID: 30, EventSlug: "camp-iii", Number: 1}))
	must(t, store.PutCharacter(ctx, event.Character{ID: 201, EventSlug: "camp", Number: 1, Name: "Inherited"}))
	must(t, store.PutCharacter(ctx, event.Character{ID: 202, EventSlug: "camp-iii", Number: 1, Name: "Own"}))
	builder, _ := newTestBuilder(store)

	run := event.Run{ID: 30, EventSlug: "camp-iii", Number: 1}
	snap, err := builder.Build(ctx, child, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := snap.Chars[1].Name; got != "Inherited" {
		t.Fatalf("character = %q, want the parent's cast", got)
	}

	must(t, store.SetConfig(ctx, "camp-iii", event.ConfigIndependentCharacters, "true"))
	snap, err = builder.Build(ctx, child, run)
	if err != nil {
		t.Fatalf("build independent: %v", err)
	}
	if got := snap.Chars[1].Name; got != "Own" {
		t.Fatalf("character = %q, want the event's own cast", got)
	}
}

func seedQuests(t *testing.T, store *storagemem.Store) {
	t.Helper()
	ctx := context.Background()
	must(t, store.PutQuestType(ctx, event.QuestType{ID: 601, EventSlug: "midnight", Number: 1, Name: "Intrigue"}))
	must(t, store.PutQuest(ctx, event.Quest{ID: 701, EventSlug: "midnight", Number: 10, TypNumber: 1, Name: "The Debt"}))
	must(t, store.PutQuest(ctx, event.Quest{ID: 702, EventSlug: "midnight", Number: 11, TypNumber: 1, Name: "Hidden", Hide: true}))
	must(t, store.PutTrait(ctx, event.Trait{ID: 801, EventSlug: "midnight", Number: 100, QuestNumber: 10, Name: "Creditor"}))
	must(t, store.PutTrait(ctx, event.Trait{ID: 802, EventSlug: "midnight", Number: 101, QuestNumber: 10, Name: "Debtor"}))
	must(t, store.PutTraitRelation(ctx, event.TraitRelation{EventSlug: "midnight", First: 100, Second: 101}))
	must(t, store.PutTraitRelation(ctx, event.TraitRelation{EventSlug: "midnight", First: 100, Second: 100}))
}

func TestBuildQuestSections(t *testing.T) {
	store, ev, run := seedGallery(t)
	ev.Features.QuestBuilder = true
	ctx := context.Background()
	seedQuests(t, store)
	must(t, store.PutRegistration(ctx, event.Registration{RunID: 1, CharacterID: 102, PlayerID: "player-1"}))
	must(t, store.PutTraitAssignment(ctx, event.TraitAssignment{RunID: 1, TraitNumber: 100, PlayerID: "player-1", Active: true}))
	must(t, store.PutTraitAssignment(ctx, event.TraitAssignment{RunID: 1, TraitNumber: 101, PlayerID: "player-2", Active: true}))
	must(t, store.PutTraitAssignment(ctx, event.TraitAssignment{RunID: 1, TraitNumber: 101, PlayerID: "player-1", Active: false}))
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := snap.Quests[11]; ok {
		t.Fatal("hidden quest must be skipped")
	}
	if got := snap.Quests[10].Typ; got != 1 {
		t.Fatalf("quest typ = %d, want 1", got)
	}
	if got := snap.Traits[100].Typ; got != 1 {
		t.Fatalf("trait typ = %d, want the owning quest's type", got)
	}

	// Relations are bidirectional and exclude self pairs.
	if got := snap.Traits[100].Traits; len(got) != 1 || got[0] != 101 {
		t.Fatalf("trait 100 relations = %v, want [101]", got)
	}
	if got := snap.Traits[101].Traits; len(got) != 1 || got[0] != 100 {
		t.Fatalf("trait 101 relations = %v, want [100]", got)
	}

	// The active assignment links both directions through the player.
	if got := snap.Chars[2].Traits; len(got) != 1 || got[0] != 100 {
		t.Fatalf("character traits = %v, want [100]", got)
	}
	if got := snap.Traits[100].Char; got != 2 {
		t.Fatalf("trait char = %d, want 2", got)
	}
	if got := snap.Traits[101].Char; got != 0 {
		t.Fatalf("trait 101 char = %d, want unassigned", got)
	}
	if snap.MaxTrNumber != 101 {
		t.Fatalf("max_tr_number = %d, want 101", snap.MaxTrNumber)
	}
}

func TestBuildDeterministic(t *testing.T) {
	store, ev, run := seedGallery(t)
	seedQuests(t, store)
	ev.Features.QuestBuilder = true
	builder, _ := newTestBuilder(store)
	ctx := context.Background()

	first, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	a, err := first.Encode()
	if err != nil {
		t.Fatalf("encode first: %v", err)
	}
	b, err := second.Encode()
	if err != nil {
		t.Fatalf("encode second: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("two builds over the same store must encode identically")
	}
}

func TestEnsureCachesSnapshot(t *testing.T) {
	store, ev, run := seedGallery(t)
	builder, _ := newTestBuilder(store)
	ctx := context.Background()

	ctx2, snap, err := builder.Ensure(ctx, ev, run)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got, ok := FromContext(ctx2); !ok || got == nil {
		t.Fatal("ensure must attach the snapshot to the context")
	}
	if len(snap.Chars) != 3 {
		t.Fatalf("chars = %d, want 3", len(snap.Chars))
	}

	// A later store write stays invisible until invalidation.
	must(t, store.PutCharacter(ctx, event.Character{ID: 105, EventSlug: "midnight", Number: 9, Name: "Late"}))
	_, cached, err := builder.Ensure(ctx, ev, run)
	if err != nil {
		t.Fatalf("ensure cached: %v", err)
	}
	if _, ok := cached.Chars[9]; ok {
		t.Fatal("ensure must serve the cached snapshot, not rebuild")
	}
}

func TestBuildFactionFeatureOffEmptyCast(t *testing.T) {
	ctx := context.Background()
	store := storagemem.New()
	ev := event.Event{Slug: "hollow", Name: "Hollow", Features: event.Features{Character: true}}
	run := event.Run{ID: 9, EventSlug: "hollow", Number: 1}
	must(t, store.PutEvent(ctx, ev))
	must(t, store.PutRun(ctx, run))
	builder, _ := newTestBuilder(store)

	snap, err := builder.Build(ctx, ev, run)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(snap.Factions) != 0 {
		t.Fatalf("factions = %v, want the memberless bucket pruned", snap.Factions)
	}
	if len(snap.FactionsTyp) != 0 {
		t.Fatalf("factions_typ = %v, want empty", snap.FactionsTyp)
	}
}
