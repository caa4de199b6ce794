package event

import (
	"strings"

	apperrors "github.com/ebriony/castlight/internal/errors"
)

// Registration casts a player on a character for one run. A character counts
// as cast in a run exactly when a registration row exists for it.
type Registration struct {
	RunID       int64
	CharacterID int64
	PlayerID    string
	PlayerFull  string
	PlayerProf  string
}

// Validate checks the registration's required attributes.
func (r Registration) Validate() error {
	if r.CharacterID == 0 {
		return apperrors.New(apperrors.CodeRegistrationEmptyCharacter, "registration character id is required")
	}
	if strings.TrimSpace(r.PlayerID) == "" {
		return apperrors.New(apperrors.CodeRegistrationEmptyPlayer, "registration player id is required")
	}
	return nil
}
