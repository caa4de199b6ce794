package event

import (
	"strings"

	apperrors "github.com/ebriony/castlight/internal/errors"
)

var (
	// ErrInvalidCharacterNumber indicates a non-positive character number.
	ErrInvalidCharacterNumber = apperrors.New(apperrors.CodeCharacterInvalidNumber, "character number must be greater than zero")
	// ErrEmptyCharacterName indicates a character without a name.
	ErrEmptyCharacterName = apperrors.New(apperrors.CodeCharacterEmptyName, "character name is required")
)

// Character represents one playable character sheet.
//
// Factions holds the numbers of the factions the character was assigned to.
// An empty list means no primary faction; the projection reports it as the
// synthetic faction 0 so gallery grouping never has holes.
type Character struct {
	ID        int64
	EventSlug string
	Number    int
	Name      string
	Title     string
	Teaser    string
	Text      string
	Hide      bool
	// MirrorID points at the internal id of the character this sheet mirrors,
	// 0 when the sheet is not a mirror.
	MirrorID int64
	// PlayerID is the event-level cast player uuid, empty while uncast.
	PlayerID string
	Factions []int
}

// Validate checks the character's required attributes.
func (c Character) Validate() error {
	if strings.TrimSpace(c.EventSlug) == "" {
		return apperrors.New(apperrors.CodeCharacterEmptyEvent, "character event slug is required")
	}
	if c.Number <= 0 {
		return ErrInvalidCharacterNumber
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCharacterName
	}
	return nil
}

// FactionNumbers returns the faction membership the projection exposes: the
// assigned numbers, or {0} when the character has no primary faction.
func (c Character) FactionNumbers() []int {
	if len(c.Factions) == 0 {
		return []int{0}
	}
	numbers := make([]int, len(c.Factions))
	copy(numbers, c.Factions)
	return numbers
}
