package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ebriony/castlight/internal/event"
)

func scanCharacter(scanner interface{ Scan(dest ...any) error }) (event.Character, error) {
	var ch event.Character
	var hide int
	err := scanner.Scan(&ch.ID, &ch.EventSlug, &ch.Number, &ch.Name, &ch.Title,
		&ch.Teaser, &ch.Text, &hide, &ch.MirrorID, &ch.PlayerID)
	if err != nil {
		return event.Character{}, err
	}
	ch.Hide = hide != 0
	return ch, nil
}

func (s *Store) characterFactions(ctx context.Context, characterID int64) ([]int, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT faction_number FROM character_factions WHERE character_id = ? ORDER BY faction_number ASC`,
		characterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var number int
		if err := rows.Scan(&number); err != nil {
			return nil, err
		}
		numbers = append(numbers, number)
	}
	return numbers, rows.Err()
}

// Characters returns an event's characters ordered by number, faction
// membership included.
func (s *Store) Characters(ctx context.Context, eventSlug string) ([]event.Character, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, event_slug, number, name, title, teaser, body, hide, mirror_id, player_id
		   FROM characters
		  WHERE event_slug = ?
		  ORDER BY number ASC`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var chars []event.Character
	for rows.Next() {
		ch, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("list characters: %w", err)
		}
		chars = append(chars, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}

	for i := range chars {
		factions, err := s.characterFactions(ctx, chars[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list character factions: %w", err)
		}
		chars[i].Factions = factions
	}
	return chars, nil
}

// Character returns one character by event slug and number.
func (s *Store) Character(ctx context.Context, eventSlug string, number int) (event.Character, bool, error) {
	if err := s.ready(ctx); err != nil {
		return event.Character{}, false, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, event_slug, number, name, title, teaser, body, hide, mirror_id, player_id
		   FROM characters
		  WHERE event_slug = ? AND number = ?`,
		strings.TrimSpace(eventSlug),
		number,
	)
	ch, err := scanCharacter(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return event.Character{}, false, nil
		}
		return event.Character{}, false, fmt.Errorf("get character: %w", err)
	}

	factions, err := s.characterFactions(ctx, ch.ID)
	if err != nil {
		return event.Character{}, false, fmt.Errorf("get character factions: %w", err)
	}
	ch.Factions = factions
	return ch, true, nil
}

// PutCharacter stores or replaces a character by id, replacing its faction
// membership rows in the same transaction.
func (s *Store) PutCharacter(ctx context.Context, ch event.Character) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := ch.Validate(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put character: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO characters (id, event_slug, number, name, title, teaser, body, hide, mirror_id, player_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    event_slug = excluded.event_slug,
		    number = excluded.number,
		    name = excluded.name,
		    title = excluded.title,
		    teaser = excluded.teaser,
		    body = excluded.body,
		    hide = excluded.hide,
		    mirror_id = excluded.mirror_id,
		    player_id = excluded.player_id`,
		ch.ID,
		strings.TrimSpace(ch.EventSlug),
		ch.Number,
		ch.Name,
		ch.Title,
		ch.Teaser,
		ch.Text,
		boolToInt(ch.Hide),
		ch.MirrorID,
		strings.TrimSpace(ch.PlayerID),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("put character: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM character_factions WHERE character_id = ?`, ch.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("put character factions: %w", err)
	}
	for _, number := range ch.Factions {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO character_factions (character_id, faction_number) VALUES (?, ?)`,
			ch.ID,
			number,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("put character factions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// Factions returns an event's factions ordered by their order field.
func (s *Store) Factions(ctx context.Context, eventSlug string) ([]event.Faction, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, event_slug, number, name, teaser, typ, ord
		   FROM factions
		  WHERE event_slug = ?
		  ORDER BY ord ASC, number ASC`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list factions: %w", err)
	}
	defer rows.Close()

	var factions []event.Faction
	for rows.Next() {
		var f event.Faction
		var typ string
		if err := rows.Scan(&f.ID, &f.EventSlug, &f.Number, &f.Name, &f.Teaser, &typ, &f.Order); err != nil {
			return nil, fmt.Errorf("list factions: %w", err)
		}
		f.Typ = event.FactionType(typ)
		factions = append(factions, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list factions: %w", err)
	}
	return factions, nil
}

// PutFaction stores or replaces a faction by id.
func (s *Store) PutFaction(ctx context.Context, f event.Faction) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO factions (id, event_slug, number, name, teaser, typ, ord)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    event_slug = excluded.event_slug,
		    number = excluded.number,
		    name = excluded.name,
		    teaser = excluded.teaser,
		    typ = excluded.typ,
		    ord = excluded.ord`,
		f.ID,
		strings.TrimSpace(f.EventSlug),
		f.Number,
		f.Name,
		f.Teaser,
		string(f.Typ),
		f.Order,
	)
	if err != nil {
		return fmt.Errorf("put faction: %w", err)
	}
	return nil
}

// Registrations returns a run's registrations.
func (s *Store) Registrations(ctx context.Context, runID int64) ([]event.Registration, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT run_id, character_id, player_id, player_full, player_prof
		   FROM registrations
		  WHERE run_id = ?`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []event.Registration
	for rows.Next() {
		var reg event.Registration
		if err := rows.Scan(&reg.RunID, &reg.CharacterID, &reg.PlayerID, &reg.PlayerFull, &reg.PlayerProf); err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// PutRegistration stores or replaces a registration by (run, character).
func (s *Store) PutRegistration(ctx context.Context, reg event.Registration) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO registrations (run_id, character_id, player_id, player_full, player_prof)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, character_id) DO UPDATE SET
		    player_id = excluded.player_id,
		    player_full = excluded.player_full,
		    player_prof = excluded.player_prof`,
		reg.RunID,
		reg.CharacterID,
		strings.TrimSpace(reg.PlayerID),
		reg.PlayerFull,
		reg.PlayerProf,
	)
	if err != nil {
		return fmt.Errorf("put registration: %w", err)
	}
	return nil
}

// DeleteRegistration removes a registration by (run, character).
func (s *Store) DeleteRegistration(ctx context.Context, runID, characterID int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM registrations WHERE run_id = ? AND character_id = ?`,
		runID,
		characterID,
	)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}
