package event

import apperrors "github.com/ebriony/castlight/internal/errors"

var (
	// ErrInvalidQuestNumber indicates a non-positive quest number.
	ErrInvalidQuestNumber = apperrors.New(apperrors.CodeQuestInvalidNumber, "quest number must be greater than zero")
	// ErrInvalidTraitNumber indicates a non-positive trait number.
	ErrInvalidTraitNumber = apperrors.New(apperrors.CodeTraitInvalidNumber, "trait number must be greater than zero")
)

// QuestType groups quests for the quest-builder feature.
type QuestType struct {
	ID        int64
	EventSlug string
	Number    int
	Name      string
}

// Quest represents one quest of an event. TypNumber references the quest
// type's business number.
type Quest struct {
	ID        int64
	EventSlug string
	Number    int
	TypNumber int
	Name      string
	Teaser    string
	Hide      bool
}

// Validate checks the quest's required attributes.
func (q Quest) Validate() error {
	if q.Number <= 0 {
		return ErrInvalidQuestNumber
	}
	return nil
}

// Trait represents one trait inside a quest. QuestNumber references the
// owning quest's business number.
type Trait struct {
	ID          int64
	EventSlug   string
	Number      int
	QuestNumber int
	Name        string
	Teaser      string
	Hide        bool
}

// Validate checks the trait's required attributes.
func (t Trait) Validate() error {
	if t.Number <= 0 {
		return ErrInvalidTraitNumber
	}
	return nil
}

// TraitRelation links two related traits by number. Self pairs are stored
// but dropped at snapshot build.
type TraitRelation struct {
	EventSlug string
	First     int
	Second    int
}

// TraitAssignment casts a trait on a player for one run. PlayerID is the
// stable player-identity uuid used to match the assignment back to a
// character view.
type TraitAssignment struct {
	RunID       int64
	TraitNumber int
	PlayerID    string
	Active      bool
}
