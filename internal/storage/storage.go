// Package storage defines the entity store contract backing the snapshot
// engine and the web handlers.
package storage

import (
	"context"

	"github.com/ebriony/castlight/internal/event"
)

// EntityStore is the queryable source of truth for event data.
//
// Enumerations return stable orderings: characters, quest types, quests and
// traits by business number, factions by their explicit order field,
// questions by question order, choice answers by question order then option
// order. The snapshot builder depends on those orderings.
type EntityStore interface {
	Close() error

	Event(ctx context.Context, slug string) (event.Event, bool, error)
	ChildEvents(ctx context.Context, parentSlug string) ([]event.Event, error)
	Runs(ctx context.Context, eventSlug string) ([]event.Run, error)
	Run(ctx context.Context, eventSlug string, number int) (event.Run, bool, error)

	Characters(ctx context.Context, eventSlug string) ([]event.Character, error)
	Character(ctx context.Context, eventSlug string, number int) (event.Character, bool, error)
	Factions(ctx context.Context, eventSlug string) ([]event.Faction, error)

	QuestTypes(ctx context.Context, eventSlug string) ([]event.QuestType, error)
	Quests(ctx context.Context, eventSlug string) ([]event.Quest, error)
	Traits(ctx context.Context, eventSlug string) ([]event.Trait, error)
	TraitRelations(ctx context.Context, eventSlug string) ([]event.TraitRelation, error)
	TraitAssignments(ctx context.Context, runID int64) ([]event.TraitAssignment, error)

	Questions(ctx context.Context, eventSlug string) ([]event.Question, error)
	TextAnswers(ctx context.Context, eventSlug string) ([]event.TextAnswer, error)
	ChoiceAnswers(ctx context.Context, eventSlug string) ([]event.ChoiceAnswer, error)

	Registrations(ctx context.Context, runID int64) ([]event.Registration, error)

	// Config returns the per-event config value for key. Absent keys report
	// present=false; callers fall back to documented defaults.
	Config(ctx context.Context, eventSlug, key string) (value string, present bool, err error)

	PutEvent(ctx context.Context, ev event.Event) error
	PutRun(ctx context.Context, run event.Run) error
	PutCharacter(ctx context.Context, ch event.Character) error
	PutFaction(ctx context.Context, f event.Faction) error
	PutQuestType(ctx context.Context, qt event.QuestType) error
	PutQuest(ctx context.Context, q event.Quest) error
	PutTrait(ctx context.Context, tr event.Trait) error
	PutTraitRelation(ctx context.Context, rel event.TraitRelation) error
	PutTraitAssignment(ctx context.Context, assignment event.TraitAssignment) error
	PutQuestion(ctx context.Context, q event.Question) error
	PutTextAnswer(ctx context.Context, answer event.TextAnswer) error
	PutChoiceAnswer(ctx context.Context, answer event.ChoiceAnswer) error
	PutRegistration(ctx context.Context, reg event.Registration) error
	DeleteRegistration(ctx context.Context, runID, characterID int64) error
	SetConfig(ctx context.Context, eventSlug, key, value string) error
}
