package event

import apperrors "github.com/ebriony/castlight/internal/errors"

// FactionType groups factions in the gallery.
type FactionType string

const (
	FactionTypePrimary    FactionType = "PRIMARY"
	FactionTypeSecondary  FactionType = "SECONDARY"
	FactionTypeTrasversal FactionType = "TRASVERSAL"
)

var (
	// ErrInvalidFactionNumber indicates a non-positive faction number.
	ErrInvalidFactionNumber = apperrors.New(apperrors.CodeFactionInvalidNumber, "faction number must be greater than zero")
	// ErrReservedFactionZero indicates an attempt to store the synthetic faction.
	ErrReservedFactionZero = apperrors.New(apperrors.CodeFactionReservedZero, "faction number 0 is reserved for the unassigned bucket")
	// ErrInvalidFactionType indicates an unknown faction type.
	ErrInvalidFactionType = apperrors.New(apperrors.CodeFactionInvalidType, "faction type is not valid")
)

// Faction represents one faction of an event. Order controls gallery
// presentation, Number is the stable business key.
type Faction struct {
	ID        int64
	EventSlug string
	Number    int
	Name      string
	Teaser    string
	Typ       FactionType
	Order     int
}

// Validate checks the faction's required attributes.
func (f Faction) Validate() error {
	if f.Number == 0 {
		return ErrReservedFactionZero
	}
	if f.Number < 0 {
		return ErrInvalidFactionNumber
	}
	switch f.Typ {
	case FactionTypePrimary, FactionTypeSecondary, FactionTypeTrasversal:
		return nil
	default:
		return ErrInvalidFactionType
	}
}
