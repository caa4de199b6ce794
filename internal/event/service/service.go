// Package service implements entity save operations. Every write persists
// through the entity store and then notifies the invalidation dispatcher,
// which keeps cached snapshots consistent without storage triggers.
package service

import (
	"context"
	"fmt"

	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/snapshot"
	"github.com/ebriony/castlight/internal/storage"
)

// Service persists entity writes and dispatches snapshot maintenance.
type Service struct {
	store      storage.EntityStore
	dispatcher *snapshot.Dispatcher
}

// New constructs the save service.
func New(store storage.EntityStore, dispatcher *snapshot.Dispatcher) *Service {
	return &Service{store: store, dispatcher: dispatcher}
}

// SaveEvent persists an event. Event-level writes carry feature flags and
// parent links, both structural, so the whole campaign family goes stale.
func (s *Service) SaveEvent(ctx context.Context, ev event.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	before, found, err := s.store.Event(ctx, ev.Slug)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}
	if err := s.store.PutEvent(ctx, ev); err != nil {
		return err
	}
	if found && before == ev {
		return nil
	}
	s.dispatcher.CampaignChanged(ctx, ev)
	return nil
}

// SetConfig persists a per-event config value. Config keys feed snapshot
// assembly (cast inheritance, uncast hiding), so they invalidate like any
// other event-level change.
func (s *Service) SetConfig(ctx context.Context, ev event.Event, key, value string) error {
	current, present, err := s.store.Config(ctx, ev.Slug, key)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := s.store.SetConfig(ctx, ev.Slug, key, value); err != nil {
		return err
	}
	if present && current == value {
		return nil
	}
	s.dispatcher.CampaignChanged(ctx, ev)
	return nil
}

// SaveCharacter persists a character and notifies the dispatcher with the
// prior row. The prior row is matched by internal id: the business number
// itself may be the thing that changed.
func (s *Service) SaveCharacter(ctx context.Context, ev event.Event, ch event.Character) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	before, err := s.characterByID(ctx, ch.EventSlug, ch.ID)
	if err != nil {
		return err
	}
	if err := s.store.PutCharacter(ctx, ch); err != nil {
		return err
	}
	s.dispatcher.CharacterSaved(ctx, ev, before, ch)
	return nil
}

// SaveFaction persists a faction and notifies the dispatcher.
func (s *Service) SaveFaction(ctx context.Context, ev event.Event, f event.Faction) error {
	if err := f.Validate(); err != nil {
		return err
	}
	before, err := s.factionByID(ctx, f.EventSlug, f.ID)
	if err != nil {
		return err
	}
	if err := s.store.PutFaction(ctx, f); err != nil {
		return err
	}
	s.dispatcher.FactionSaved(ctx, ev, before, f)
	return nil
}

// SaveQuest persists a quest and notifies the dispatcher.
func (s *Service) SaveQuest(ctx context.Context, ev event.Event, q event.Quest) error {
	if err := q.Validate(); err != nil {
		return err
	}
	before, err := s.questByID(ctx, q.EventSlug, q.ID)
	if err != nil {
		return err
	}
	if err := s.store.PutQuest(ctx, q); err != nil {
		return err
	}
	s.dispatcher.QuestSaved(ctx, ev, before, q)
	return nil
}

// SaveTrait persists a trait and notifies the dispatcher.
func (s *Service) SaveTrait(ctx context.Context, ev event.Event, tr event.Trait) error {
	if err := tr.Validate(); err != nil {
		return err
	}
	before, err := s.traitByID(ctx, tr.EventSlug, tr.ID)
	if err != nil {
		return err
	}
	if err := s.store.PutTrait(ctx, tr); err != nil {
		return err
	}
	s.dispatcher.TraitSaved(ctx, ev, before, tr)
	return nil
}

// SaveRegistration persists a cast relation for one run and patches that
// run's snapshot.
func (s *Service) SaveRegistration(ctx context.Context, ev event.Event, run event.Run, reg event.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.RunID = run.ID
	if err := s.store.PutRegistration(ctx, reg); err != nil {
		return err
	}
	s.dispatcher.RegistrationChanged(ctx, ev, run, reg)
	return nil
}

// DeleteRegistration removes a cast relation for one run and patches that
// run's snapshot; the patch re-reads the store and clears the player fields.
func (s *Service) DeleteRegistration(ctx context.Context, ev event.Event, run event.Run, characterID int64) error {
	if err := s.store.DeleteRegistration(ctx, run.ID, characterID); err != nil {
		return err
	}
	s.dispatcher.RegistrationChanged(ctx, ev, run, event.Registration{RunID: run.ID, CharacterID: characterID})
	return nil
}

func (s *Service) characterByID(ctx context.Context, eventSlug string, id int64) (*event.Character, error) {
	chars, err := s.store.Characters(ctx, eventSlug)
	if err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}
	for i := range chars {
		if chars[i].ID == id {
			return &chars[i], nil
		}
	}
	return nil, nil
}

func (s *Service) factionByID(ctx context.Context, eventSlug string, id int64) (*event.Faction, error) {
	factions, err := s.store.Factions(ctx, eventSlug)
	if err != nil {
		return nil, fmt.Errorf("load factions: %w", err)
	}
	for i := range factions {
		if factions[i].ID == id {
			return &factions[i], nil
		}
	}
	return nil, nil
}

func (s *Service) questByID(ctx context.Context, eventSlug string, id int64) (*event.Quest, error) {
	quests, err := s.store.Quests(ctx, eventSlug)
	if err != nil {
		return nil, fmt.Errorf("load quests: %w", err)
	}
	for i := range quests {
		if quests[i].ID == id {
			return &quests[i], nil
		}
	}
	return nil, nil
}

func (s *Service) traitByID(ctx context.Context, eventSlug string, id int64) (*event.Trait, error) {
	traits, err := s.store.Traits(ctx, eventSlug)
	if err != nil {
		return nil, fmt.Errorf("load traits: %w", err)
	}
	for i := range traits {
		if traits[i].ID == id {
			return &traits[i], nil
		}
	}
	return nil, nil
}
