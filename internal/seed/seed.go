// Package seed populates a development database with demo events. Writes go
// through the save service so cached snapshots stay consistent with the
// seeded rows, the same path production writes take.
package seed

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/event/service"
	"github.com/ebriony/castlight/internal/storage"
)

// Scenario is one self-contained demo fixture.
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, svc *service.Service, store storage.EntityStore) error
}

// Scenarios returns the available fixtures in application order.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:        "emberfall",
			Description: "campaign with two child events, factions and cast",
			Run:         seedEmberfall,
		},
		{
			Name:        "ashmoor",
			Description: "quest-builder event with traits, relations and questions",
			Run:         seedAshmoor,
		},
	}
}

// Apply runs the named scenario, or every scenario when name is empty.
func Apply(ctx context.Context, svc *service.Service, store storage.EntityStore, name string, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	applied := 0
	for _, scenario := range Scenarios() {
		if name != "" && scenario.Name != name {
			continue
		}
		if err := scenario.Run(ctx, svc, store); err != nil {
			return fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		fmt.Fprintf(out, "seeded %s: %s\n", scenario.Name, scenario.Description)
		applied++
	}
	if applied == 0 {
		return fmt.Errorf("unknown scenario %q", name)
	}
	return nil
}

func seedEmberfall(ctx context.Context, svc *service.Service, store storage.EntityStore) error {
	parent := event.Event{
		Slug:     "emberfall",
		Name:     "Emberfall",
		Features: event.Features{Character: true, Faction: true, Mirror: true},
	}
	if err := svc.SaveEvent(ctx, parent); err != nil {
		return err
	}
	children := []event.Event{
		{Slug: "emberfall-ii", Name: "Emberfall II", ParentSlug: "emberfall", Features: parent.Features},
		{Slug: "emberfall-iii", Name: "Emberfall III", ParentSlug: "emberfall", Features: parent.Features},
	}
	for _, child := range children {
		if err := svc.SaveEvent(ctx, child); err != nil {
			return err
		}
	}

	runs := []event.Run{
		{ID: 1, EventSlug: "emberfall", Number: 1},
		{ID: 2, EventSlug: "emberfall-ii", Number: 1},
		{ID: 3, EventSlug: "emberfall-ii", Number: 2},
		{ID: 4, EventSlug: "emberfall-iii", Number: 1},
	}
	for _, run := range runs {
		if err := store.PutRun(ctx, run); err != nil {
			return err
		}
	}

	factions := []event.Faction{
		{ID: 1, EventSlug: "emberfall", Number: 1, Name: "House Cindral", Typ: event.FactionTypePrimary, Order: 1},
		{ID: 2, EventSlug: "emberfall", Number: 2, Name: "The Ashen Choir", Typ: event.FactionTypePrimary, Order: 2},
		{ID: 3, EventSlug: "emberfall", Number: 3, Name: "Lamplighters", Typ: event.FactionTypeSecondary, Order: 3},
	}
	for _, f := range factions {
		if err := svc.SaveFaction(ctx, parent, f); err != nil {
			return err
		}
	}

	characters := []event.Character{
		{ID: 1, EventSlug: "emberfall", Number: 1, Name: "Serane Vail", Title: "Warden of the Low Gate", Factions: []int{1}},
		{ID: 2, EventSlug: "emberfall", Number: 2, Name: "Orrin Blackbough", Factions: []int{1, 3}},
		{ID: 3, EventSlug: "emberfall", Number: 3, Name: "Mother Halcya", Title: "Voice of the Choir", Factions: []int{2}},
		{ID: 4, EventSlug: "emberfall", Number: 4, Name: "The Stranger"},
		{ID: 5, EventSlug: "emberfall", Number: 5, Name: "Serane Vail (mirror)", MirrorID: 1, Factions: []int{1}},
	}
	for _, ch := range characters {
		if err := svc.SaveCharacter(ctx, parent, ch); err != nil {
			return err
		}
	}

	// Cast the first run of the campaign.
	players := []struct {
		characterID int64
		full        string
	}{
		{1, "Ilse Maren"},
		{3, "Toma Wrede"},
	}
	run := runs[0]
	for _, p := range players {
		reg := event.Registration{
			RunID:       run.ID,
			CharacterID: p.characterID,
			PlayerID:    uuid.NewString(),
			PlayerFull:  p.full,
		}
		if err := svc.SaveRegistration(ctx, parent, run, reg); err != nil {
			return err
		}
	}

	return svc.SetConfig(ctx, parent, event.ConfigGalleryHideUncasted, "false")
}

func seedAshmoor(ctx context.Context, svc *service.Service, store storage.EntityStore) error {
	ev := event.Event{
		Slug:     "ashmoor",
		Name:     "Ashmoor",
		Features: event.Features{Character: true, QuestBuilder: true},
	}
	if err := svc.SaveEvent(ctx, ev); err != nil {
		return err
	}
	run := event.Run{ID: 10, EventSlug: "ashmoor", Number: 1}
	if err := store.PutRun(ctx, run); err != nil {
		return err
	}

	characters := []event.Character{
		{ID: 20, EventSlug: "ashmoor", Number: 1, Name: "Edda Thorn"},
		{ID: 21, EventSlug: "ashmoor", Number: 2, Name: "Casimir Holt"},
	}
	for _, ch := range characters {
		if err := svc.SaveCharacter(ctx, ev, ch); err != nil {
			return err
		}
	}

	if err := store.PutQuestType(ctx, event.QuestType{ID: 30, EventSlug: "ashmoor", Number: 1, Name: "Debts"}); err != nil {
		return err
	}
	quests := []event.Quest{
		{ID: 40, EventSlug: "ashmoor", Number: 1, TypNumber: 1, Name: "The Ledger of Ash"},
		{ID: 41, EventSlug: "ashmoor", Number: 2, TypNumber: 1, Name: "A Debt Unspoken"},
	}
	for _, q := range quests {
		if err := svc.SaveQuest(ctx, ev, q); err != nil {
			return err
		}
	}
	traits := []event.Trait{
		{ID: 50, EventSlug: "ashmoor", Number: 1, QuestNumber: 1, Name: "Creditor"},
		{ID: 51, EventSlug: "ashmoor", Number: 2, QuestNumber: 1, Name: "Debtor"},
		{ID: 52, EventSlug: "ashmoor", Number: 3, QuestNumber: 2, Name: "Witness"},
	}
	for _, tr := range traits {
		if err := svc.SaveTrait(ctx, ev, tr); err != nil {
			return err
		}
	}
	if err := store.PutTraitRelation(ctx, event.TraitRelation{EventSlug: "ashmoor", First: 1, Second: 2}); err != nil {
		return err
	}

	// Cast one character and assign it a trait through the shared player id.
	playerID := uuid.NewString()
	reg := event.Registration{RunID: run.ID, CharacterID: 20, PlayerID: playerID, PlayerFull: "Nils Ferro"}
	if err := svc.SaveRegistration(ctx, ev, run, reg); err != nil {
		return err
	}
	assignment := event.TraitAssignment{RunID: run.ID, TraitNumber: 1, PlayerID: playerID, Active: true}
	if err := store.PutTraitAssignment(ctx, assignment); err != nil {
		return err
	}

	// One text and one choice question with answers for the first character.
	textQ := event.Question{UUID: uuid.NewString(), EventSlug: "ashmoor", Order: 1, Typ: event.QuestionTypeText, Visible: true}
	if err := store.PutQuestion(ctx, textQ); err != nil {
		return err
	}
	if err := store.PutTextAnswer(ctx, event.TextAnswer{QuestionUUID: textQ.UUID, CharacterID: 20, Text: "I keep the ledger because no one else will."}); err != nil {
		return err
	}
	choiceQ := event.Question{UUID: uuid.NewString(), EventSlug: "ashmoor", Order: 2, Typ: event.QuestionTypeChoice, Visible: true}
	if err := store.PutQuestion(ctx, choiceQ); err != nil {
		return err
	}
	answer := event.ChoiceAnswer{
		QuestionUUID: choiceQ.UUID,
		CharacterID:  20,
		OptionUUID:   uuid.NewString(),
		OptionOrder:  1,
	}
	return store.PutChoiceAnswer(ctx, answer)
}
