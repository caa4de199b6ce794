package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/ebriony/castlight/internal/event"
)

// Questions returns an event's writing questions ordered by question order.
func (s *Store) Questions(ctx context.Context, eventSlug string) ([]event.Question, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT uuid, event_slug, ord, typ, visible
		   FROM questions
		  WHERE event_slug = ?
		  ORDER BY ord ASC`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []event.Question
	for rows.Next() {
		var q event.Question
		var typ string
		var visible int
		if err := rows.Scan(&q.UUID, &q.EventSlug, &q.Order, &typ, &visible); err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		q.Typ = event.QuestionType(typ)
		q.Visible = visible != 0
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// TextAnswers returns an event's text answers.
func (s *Store) TextAnswers(ctx context.Context, eventSlug string) ([]event.TextAnswer, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT a.question_uuid, a.character_id, a.body
		   FROM text_answers a
		   JOIN questions q ON q.uuid = a.question_uuid
		  WHERE q.event_slug = ?`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list text answers: %w", err)
	}
	defer rows.Close()

	var answers []event.TextAnswer
	for rows.Next() {
		var answer event.TextAnswer
		if err := rows.Scan(&answer.QuestionUUID, &answer.CharacterID, &answer.Text); err != nil {
			return nil, fmt.Errorf("list text answers: %w", err)
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list text answers: %w", err)
	}
	return answers, nil
}

// ChoiceAnswers returns an event's choice answers ordered by question order
// then option order.
func (s *Store) ChoiceAnswers(ctx context.Context, eventSlug string) ([]event.ChoiceAnswer, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT a.question_uuid, a.character_id, a.option_uuid, a.option_order
		   FROM choice_answers a
		   JOIN questions q ON q.uuid = a.question_uuid
		  WHERE q.event_slug = ?
		  ORDER BY q.ord ASC, a.option_order ASC`,
		strings.TrimSpace(eventSlug),
	)
	if err != nil {
		return nil, fmt.Errorf("list choice answers: %w", err)
	}
	defer rows.Close()

	var answers []event.ChoiceAnswer
	for rows.Next() {
		var answer event.ChoiceAnswer
		if err := rows.Scan(&answer.QuestionUUID, &answer.CharacterID, &answer.OptionUUID, &answer.OptionOrder); err != nil {
			return nil, fmt.Errorf("list choice answers: %w", err)
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list choice answers: %w", err)
	}
	return answers, nil
}

// PutQuestion stores or replaces a question by uuid.
func (s *Store) PutQuestion(ctx context.Context, q event.Question) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO questions (uuid, event_slug, ord, typ, visible)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(uuid) DO UPDATE SET
		    event_slug = excluded.event_slug,
		    ord = excluded.ord,
		    typ = excluded.typ,
		    visible = excluded.visible`,
		strings.TrimSpace(q.UUID),
		strings.TrimSpace(q.EventSlug),
		q.Order,
		string(q.Typ),
		boolToInt(q.Visible),
	)
	if err != nil {
		return fmt.Errorf("put question: %w", err)
	}
	return nil
}

// PutTextAnswer stores or replaces an answer by (question, character).
func (s *Store) PutTextAnswer(ctx context.Context, answer event.TextAnswer) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO text_answers (question_uuid, character_id, body)
		 VALUES (?, ?, ?)
		 ON CONFLICT(question_uuid, character_id) DO UPDATE SET body = excluded.body`,
		strings.TrimSpace(answer.QuestionUUID),
		answer.CharacterID,
		answer.Text,
	)
	if err != nil {
		return fmt.Errorf("put text answer: %w", err)
	}
	return nil
}

// PutChoiceAnswer stores or replaces an answer by (question, character, option).
func (s *Store) PutChoiceAnswer(ctx context.Context, answer event.ChoiceAnswer) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO choice_answers (question_uuid, character_id, option_uuid, option_order)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(question_uuid, character_id, option_uuid) DO UPDATE SET
		    option_order = excluded.option_order`,
		strings.TrimSpace(answer.QuestionUUID),
		answer.CharacterID,
		strings.TrimSpace(answer.OptionUUID),
		answer.OptionOrder,
	)
	if err != nil {
		return fmt.Errorf("put choice answer: %w", err)
	}
	return nil
}
