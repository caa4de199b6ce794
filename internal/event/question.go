package event

import (
	"strings"

	apperrors "github.com/ebriony/castlight/internal/errors"
)

// QuestionType distinguishes free-text from multiple-choice questions.
type QuestionType string

const (
	QuestionTypeText   QuestionType = "text"
	QuestionTypeChoice QuestionType = "choice"
)

var (
	// ErrEmptyQuestionUUID indicates a question without an identifier.
	ErrEmptyQuestionUUID = apperrors.New(apperrors.CodeQuestionEmptyUUID, "question uuid is required")
	// ErrInvalidQuestionType indicates an unknown question type.
	ErrInvalidQuestionType = apperrors.New(apperrors.CodeQuestionInvalidType, "question type is not valid")
)

// Question represents one writing question asked of characters. Only visible
// questions surface in snapshot fields.
type Question struct {
	UUID      string
	EventSlug string
	Order     int
	Typ       QuestionType
	Visible   bool
}

// Validate checks the question's required attributes.
func (q Question) Validate() error {
	if strings.TrimSpace(q.UUID) == "" {
		return ErrEmptyQuestionUUID
	}
	switch q.Typ {
	case QuestionTypeText, QuestionTypeChoice:
		return nil
	default:
		return ErrInvalidQuestionType
	}
}

// Option represents one selectable option of a choice question.
type Option struct {
	UUID         string
	QuestionUUID string
	Order        int
	Name         string
}

// TextAnswer holds a character's free-text answer to a question.
type TextAnswer struct {
	QuestionUUID string
	CharacterID  int64
	Text         string
}

// ChoiceAnswer holds one selected option of a choice question. A character
// may select several options of the same question.
type ChoiceAnswer struct {
	QuestionUUID string
	CharacterID  int64
	OptionUUID   string
	OptionOrder  int
}
