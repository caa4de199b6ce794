package event

import (
	"strings"

	apperrors "github.com/ebriony/castlight/internal/errors"
)

var (
	// ErrEmptySlug indicates an event without a slug.
	ErrEmptySlug = apperrors.New(apperrors.CodeEventEmptySlug, "event slug is required")
	// ErrEmptyName indicates an event without a display name.
	ErrEmptyName = apperrors.New(apperrors.CodeEventEmptyName, "event name is required")
	// ErrInvalidRunNumber indicates a non-positive run number.
	ErrInvalidRunNumber = apperrors.New(apperrors.CodeRunInvalidNumber, "run number must be greater than zero")
)

// Features gates which snapshot sections exist for an event.
type Features struct {
	Character    bool
	Faction      bool
	QuestBuilder bool
	Mirror       bool
}

// Event represents one LARP event. ParentSlug links campaign events to the
// campaign root; an empty ParentSlug marks a standalone or root event.
type Event struct {
	Slug       string
	Name       string
	ParentSlug string
	Features   Features
}

// Validate checks the event's required attributes.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Slug) == "" {
		return ErrEmptySlug
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Run represents one run of an event. Snapshots are keyed (event slug, run
// number).
type Run struct {
	ID        int64
	EventSlug string
	Number    int
}

// Validate checks the run's required attributes.
func (r Run) Validate() error {
	if strings.TrimSpace(r.EventSlug) == "" {
		return apperrors.New(apperrors.CodeRunEmptyEvent, "run event slug is required")
	}
	if r.Number <= 0 {
		return ErrInvalidRunNumber
	}
	return nil
}

// Config keys consumed by the snapshot engine. Values are stored as strings;
// absent keys fall back to the documented defaults.
const (
	// ConfigGalleryHideUncasted hides characters without an assigned player in
	// the public gallery. Default false.
	ConfigGalleryHideUncasted = "gallery_hide_uncasted_characters"
	// ConfigIndependentCharacters disconnects a campaign event's cast from its
	// parent. Default false: child events inherit the parent's characters.
	ConfigIndependentCharacters = "campaign_independent_characters"
)

// BoolConfig interprets a stored config value, falling back to def when the
// value is absent or unparseable. Config lookups never fail hard.
func BoolConfig(value string, present bool, def bool) bool {
	if !present {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
