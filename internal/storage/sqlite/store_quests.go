package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/ebriony/castlight/internal/event"
)

// QuestTypes returns an event's quest types ordered by number.
func (s *Store) QuestTypes(ctx context.Context, eventSlug string) ([]event.QuestType, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, event_slug, number, name FROM quest_types WHERE event_slug = ? ORDER BY number ASC`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list quest types: %w", err)
	}
	defer rows.Close()

	var types []event.QuestType
	for rows.Next() {
		var qt event.QuestType
		if err := rows.Scan(&qt.ID, &qt.EventSlug, &qt.Number, &qt.Name); err != nil {
			return nil, fmt.Errorf("list quest types: %w", err)
		}
		types = append(types, qt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quest types: %w", err)
	}
	return types, nil
}

// Quests returns an event's quests ordered by number.
func (s *Store) Quests(ctx context.Context, eventSlug string) ([]event.Quest, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, event_slug, number, typ_number, name, teaser, hide
		   FROM quests
		  WHERE event_slug = ?
		  ORDER BY number ASC`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()

	var quests []event.Quest
	for rows.Next() {
		var q event.Quest
		var hide int
		if err := rows.Scan(&q.ID, &q.EventSlug, &q.Number, &q.TypNumber, &q.Name, &q.Teaser, &hide); err != nil {
			return nil, fmt.Errorf("list quests: %w", err)
		}
		q.Hide = hide != 0
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	return quests, nil
}

// Traits returns an event's traits ordered by number.
func (s *Store) Traits(ctx context.Context, eventSlug string) ([]event.Trait, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, event_slug, number, quest_number, name, teaser, hide
		   FROM traits
		  WHERE event_slug = ?
		  ORDER BY number ASC`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list traits: %w", err)
	}
	defer rows.Close()

	var traits []event.Trait
	for rows.Next() {
		var tr event.Trait
		var hide int
		if err := rows.Scan(&tr.ID, &tr.EventSlug, &tr.Number, &tr.QuestNumber, &tr.Name, &tr.Teaser, &hide); err != nil {
			return nil, fmt.Errorf("list traits: %w", err)
		}
		tr.Hide = hide != 0
		traits = append(traits, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list traits: %w", err)
	}
	return traits, nil
}

// TraitRelations returns an event's trait relation pairs.
func (s *Store) TraitRelations(ctx context.Context, eventSlug string) ([]event.TraitRelation, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT event_slug, first, second FROM trait_relations WHERE event_slug = ?`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list trait relations: %w", err)
	}
	defer rows.Close()

	var rels []event.TraitRelation
	for rows.Next() {
		var rel event.TraitRelation
		if err := rows.Scan(&rel.EventSlug, &rel.First, &rel.Second); err != nil {
			return nil, fmt.Errorf("list trait relations: %w", err)
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trait relations: %w", err)
	}
	return rels, nil
}

// TraitAssignments returns a run's trait assignments.
func (s *Store) TraitAssignments(ctx context.Context, runID int64) ([]event.TraitAssignment, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT run_id, trait_number, player_id, active FROM trait_assignments WHERE run_id = ?`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list trait assignments: %w", err)
	}
	defer rows.Close()

	var assignments []event.TraitAssignment
	for rows.Next() {
		var assignment event.TraitAssignment
		var active int
		if err := rows.Scan(&assignment.RunID, &assignment.TraitNumber, &assignment.PlayerID, &active); err != nil {
			return nil, fmt.Errorf("list trait assignments: %w", err)
		}
		assignment.Active = active != 0
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trait assignments: %w", err)
	}
	return assignments, nil
}

// PutQuestType stores or replaces a quest type by id.
func (s *Store) PutQuestType(ctx context.Context, qt event.QuestType) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO quest_types (id, event_slug, number, name)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    event_slug = excluded.event_slug,
		    number = excluded.number,
		    name = excluded.name`,
		qt.ID,
		strings.TrimSpace(qt.EventSlug),
		qt.Number,
		qt.Name,
	)
	if err != nil {
		return fmt.Errorf("put quest type: %w", err)
	}
	return nil
}

// PutQuest stores or replaces a quest by id.
func (s *Store) PutQuest(ctx context.Context, q event.Quest) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO quests (id, event_slug, number, typ_number, name, teaser, hide)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    event_slug = excluded.event_slug,
		    number = excluded.number,
		    typ_number = excluded.typ_number,
		    name = excluded.name,
		    teaser = excluded.teaser,
		    hide = excluded.hide`,
		q.ID,
		strings.TrimSpace(q.EventSlug),
		q.Number,
		q.TypNumber,
		q.Name,
		q.Teaser,
		boolToInt(q.Hide),
	)
	if err != nil {
		return fmt.Errorf("put quest: %w", err)
	}
	return nil
}

// PutTrait stores or replaces a trait by id.
func (s *Store) PutTrait(ctx context.Context, tr event.Trait) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := tr.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO traits (id, event_slug, number, quest_number, name, teaser, hide)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    event_slug = excluded.event_slug,
		    number = excluded.number,
		    quest_number = excluded.quest_number,
		    name = excluded.name,
		    teaser = excluded.teaser,
		    hide = excluded.hide`,
		tr.ID,
		strings.TrimSpace(tr.EventSlug),
		tr.Number,
		tr.QuestNumber,
		tr.Name,
		tr.Teaser,
		boolToInt(tr.Hide),
	)
	if err != nil {
		return fmt.Errorf("put trait: %w", err)
	}
	return nil
}

// PutTraitRelation stores a trait relation pair, ignoring duplicates.
func (s *Store) PutTraitRelation(ctx context.Context, rel event.TraitRelation) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO trait_relations (event_slug, first, second) VALUES (?, ?, ?)`,
		strings.TrimSpace(rel.EventSlug),
		rel.First,
		rel.Second,
	)
	if err != nil {
		return fmt.Errorf("put trait relation: %w", err)
	}
	return nil
}

// PutTraitAssignment stores or replaces an assignment by (run, trait).
func (s *Store) PutTraitAssignment(ctx context.Context, assignment event.TraitAssignment) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO trait_assignments (run_id, trait_number, player_id, active)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(run_id, trait_number) DO UPDATE SET
		    player_id = excluded.player_id,
		    active = excluded.active`,
		assignment.RunID,
		assignment.TraitNumber,
		strings.TrimSpace(assignment.PlayerID),
		boolToInt(assignment.Active),
	)
	if err != nil {
		return fmt.Errorf("put trait assignment: %w", err)
	}
	return nil
}
