// Package memory provides an in-memory EntityStore used by tests and seeds.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/storage"
)

// Store keeps all entity data in process memory. Reads return copies, so
// callers can mutate results freely.
type Store struct {
	mu sync.RWMutex

	events        map[string]event.Event
	runs          map[int64]event.Run
	characters    map[int64]event.Character
	factions      map[int64]event.Faction
	questTypes    map[int64]event.QuestType
	quests        map[int64]event.Quest
	traits        map[int64]event.Trait
	relations     []event.TraitRelation
	assignments   []event.TraitAssignment
	questions     map[string]event.Question
	textAnswers   []event.TextAnswer
	choiceAnswers []event.ChoiceAnswer
	registrations []event.Registration
	configs       map[string]map[string]string
}

var _ storage.EntityStore = (*Store)(nil)

// New creates an empty in-memory entity store.
func New() *Store {
	return &Store{
		events:     make(map[string]event.Event),
		runs:       make(map[int64]event.Run),
		characters: make(map[int64]event.Character),
		factions:   make(map[int64]event.Faction),
		questTypes: make(map[int64]event.QuestType),
		quests:     make(map[int64]event.Quest),
		traits:     make(map[int64]event.Trait),
		questions:  make(map[string]event.Question),
		configs:    make(map[string]map[string]string),
	}
}

// Close releases nothing; it satisfies the EntityStore contract.
func (s *Store) Close() error { return nil }

// Event returns one event by slug.
func (s *Store) Event(_ context.Context, slug string) (event.Event, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[slug]
	return ev, ok, nil
}

// ChildEvents returns the events whose parent is parentSlug.
func (s *Store) ChildEvents(_ context.Context, parentSlug string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var children []event.Event
	for _, ev := range s.events {
		if ev.ParentSlug == parentSlug && parentSlug != "" {
			children = append(children, ev)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Slug < children[j].Slug })
	return children, nil
}

// Runs returns every run of an event ordered by number.
func (s *Store) Runs(_ context.Context, eventSlug string) ([]event.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var runs []event.Run
	for _, run := range s.runs {
		if run.EventSlug == eventSlug {
			runs = append(runs, run)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Number < runs[j].Number })
	return runs, nil
}

// Run returns one run by event slug and number.
func (s *Store) Run(_ context.Context, eventSlug string, number int) (event.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, run := range s.runs {
		if run.EventSlug == eventSlug && run.Number == number {
			return run, true, nil
		}
	}
	return event.Run{}, false, nil
}

// Characters returns an event's characters ordered by number.
func (s *Store) Characters(_ context.Context, eventSlug string) ([]event.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chars []event.Character
	for _, ch := range s.characters {
		if ch.EventSlug == eventSlug {
			chars = append(chars, copyCharacter(ch))
		}
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i].Number < chars[j].Number })
	return chars, nil
}

// Character returns one character by event slug and number.
func (s *Store) Character(_ context.Context, eventSlug string, number int) (event.Character, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.characters {
		if ch.EventSlug == eventSlug && ch.Number == number {
			return copyCharacter(ch), true, nil
		}
	}
	return event.Character{}, false, nil
}

// Factions returns an event's factions ordered by their order field.
func (s *Store) Factions(_ context.Context, eventSlug string) ([]event.Faction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var factions []event.Faction
	for _, f := range s.factions {
		if f.EventSlug == eventSlug {
			factions = append(factions, f)
		}
	}
	sort.Slice(factions, func(i, j int) bool {
		if factions[i].Order != factions[j].Order {
			return factions[i].Order < factions[j].Order
		}
		return factions[i].Number < factions[j].Number
	})
	return factions, nil
}

// QuestTypes returns an event's quest types ordered by number.
func (s *Store) QuestTypes(_ context.Context, eventSlug string) ([]event.QuestType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var types []event.QuestType
	for _, qt := range s.questTypes {
		if qt.EventSlug == eventSlug {
			types = append(types, qt)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Number < types[j].Number })
	return types, nil
}

// Quests returns an event's quests ordered by number.
func (s *Store) Quests(_ context.Context, eventSlug string) ([]event.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var quests []event.Quest
	for _, q := range s.quests {
		if q.EventSlug == eventSlug {
			quests = append(quests, q)
		}
	}
	sort.Slice(quests, func(i, j int) bool { return quests[i].Number < quests[j].Number })
	return quests, nil
}

// Traits returns an event's traits ordered by number.
func (s *Store) Traits(_ context.Context, eventSlug string) ([]event.Trait, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var traits []event.Trait
	for _, tr := range s.traits {
		if tr.EventSlug == eventSlug {
			traits = append(traits, tr)
		}
	}
	sort.Slice(traits, func(i, j int) bool { return traits[i].Number < traits[j].Number })
	return traits, nil
}

// TraitRelations returns an event's trait relation pairs.
func (s *Store) TraitRelations(_ context.Context, eventSlug string) ([]event.TraitRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rels []event.TraitRelation
	for _, rel := range s.relations {
		if rel.EventSlug == eventSlug {
			rels = append(rels, rel)
		}
	}
	return rels, nil
}

// TraitAssignments returns a run's trait assignments.
func (s *Store) TraitAssignments(_ context.Context, runID int64) ([]event.TraitAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var assignments []event.TraitAssignment
	for _, a := range s.assignments {
		if a.RunID == runID {
			assignments = append(assignments, a)
		}
	}
	return assignments, nil
}

// Questions returns an event's writing questions ordered by question order.
func (s *Store) Questions(_ context.Context, eventSlug string) ([]event.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var questions []event.Question
	for _, q := range s.questions {
		if q.EventSlug == eventSlug {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	return questions, nil
}

// TextAnswers returns an event's text answers.
func (s *Store) TextAnswers(_ context.Context, eventSlug string) ([]event.TextAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var answers []event.TextAnswer
	for _, a := range s.textAnswers {
		if q, ok := s.questions[a.QuestionUUID]; ok && q.EventSlug == eventSlug {
			answers = append(answers, a)
		}
	}
	return answers, nil
}

// ChoiceAnswers returns an event's choice answers ordered by question order
// then option order.
func (s *Store) ChoiceAnswers(_ context.Context, eventSlug string) ([]event.ChoiceAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var answers []event.ChoiceAnswer
	for _, a := range s.choiceAnswers {
		if q, ok := s.questions[a.QuestionUUID]; ok && q.EventSlug == eventSlug {
			answers = append(answers, a)
		}
	}
	sort.SliceStable(answers, func(i, j int) bool {
		qi := s.questions[answers[i].QuestionUUID].Order
		qj := s.questions[answers[j].QuestionUUID].Order
		if qi != qj {
			return qi < qj
		}
		return answers[i].OptionOrder < answers[j].OptionOrder
	})
	return answers, nil
}

// Registrations returns a run's registrations.
func (s *Store) Registrations(_ context.Context, runID int64) ([]event.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var regs []event.Registration
	for _, reg := range s.registrations {
		if reg.RunID == runID {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

// Config returns the per-event config value for key.
func (s *Store) Config(_ context.Context, eventSlug, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.configs[eventSlug]
	if !ok {
		return "", false, nil
	}
	value, ok := values[key]
	return value, ok, nil
}

// PutEvent stores or replaces an event by slug.
func (s *Store) PutEvent(_ context.Context, ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.Slug] = ev
	return nil
}

// PutRun stores or replaces a run by id.
func (s *Store) PutRun(_ context.Context, run event.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// PutCharacter stores or replaces a character by id.
func (s *Store) PutCharacter(_ context.Context, ch event.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[ch.ID] = copyCharacter(ch)
	return nil
}

// PutFaction stores or replaces a faction by id.
func (s *Store) PutFaction(_ context.Context, f event.Faction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factions[f.ID] = f
	return nil
}

// PutQuestType stores or replaces a quest type by id.
func (s *Store) PutQuestType(_ context.Context, qt event.QuestType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questTypes[qt.ID] = qt
	return nil
}

// PutQuest stores or replaces a quest by id.
func (s *Store) PutQuest(_ context.Context, q event.Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests[q.ID] = q
	return nil
}

// PutTrait stores or replaces a trait by id.
func (s *Store) PutTrait(_ context.Context, tr event.Trait) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traits[tr.ID] = tr
	return nil
}

// PutTraitRelation appends a trait relation pair.
func (s *Store) PutTraitRelation(_ context.Context, rel event.TraitRelation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations = append(s.relations, rel)
	return nil
}

// PutTraitAssignment stores or replaces an assignment by (run, trait).
func (s *Store) PutTraitAssignment(_ context.Context, assignment event.TraitAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.assignments {
		if existing.RunID == assignment.RunID && existing.TraitNumber == assignment.TraitNumber {
			s.assignments[i] = assignment
			return nil
		}
	}
	s.assignments = append(s.assignments, assignment)
	return nil
}

// PutQuestion stores or replaces a question by uuid.
func (s *Store) PutQuestion(_ context.Context, q event.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.UUID] = q
	return nil
}

// PutTextAnswer stores or replaces an answer by (question, character).
func (s *Store) PutTextAnswer(_ context.Context, answer event.TextAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.textAnswers {
		if existing.QuestionUUID == answer.QuestionUUID && existing.CharacterID == answer.CharacterID {
			s.textAnswers[i] = answer
			return nil
		}
	}
	s.textAnswers = append(s.textAnswers, answer)
	return nil
}

// PutChoiceAnswer stores or replaces an answer by (question, character, option).
func (s *Store) PutChoiceAnswer(_ context.Context, answer event.ChoiceAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.choiceAnswers {
		if existing.QuestionUUID == answer.QuestionUUID &&
			existing.CharacterID == answer.CharacterID &&
			existing.OptionUUID == answer.OptionUUID {
			s.choiceAnswers[i] = answer
			return nil
		}
	}
	s.choiceAnswers = append(s.choiceAnswers, answer)
	return nil
}

// PutRegistration stores or replaces a registration by (run, character).
func (s *Store) PutRegistration(_ context.Context, reg event.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.registrations {
		if existing.RunID == reg.RunID && existing.CharacterID == reg.CharacterID {
			s.registrations[i] = reg
			return nil
		}
	}
	s.registrations = append(s.registrations, reg)
	return nil
}

// DeleteRegistration removes a registration by (run, character).
func (s *Store) DeleteRegistration(_ context.Context, runID, characterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.registrations {
		if existing.RunID == runID && existing.CharacterID == characterID {
			s.registrations = append(s.registrations[:i], s.registrations[i+1:]...)
			return nil
		}
	}
	return nil
}

// SetConfig stores a per-event config value.
func (s *Store) SetConfig(_ context.Context, eventSlug, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.configs[eventSlug]
	if !ok {
		values = make(map[string]string)
		s.configs[eventSlug] = values
	}
	values[key] = value
	return nil
}

func copyCharacter(ch event.Character) event.Character {
	out := ch
	out.Factions = append([]int(nil), ch.Factions...)
	return out
}
