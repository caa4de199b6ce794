// Package errors provides structured error handling for castlight services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeMalformedRequest indicates a request body that could not be decoded.
	CodeMalformedRequest Code = "MALFORMED_REQUEST"

	// Event errors
	CodeEventEmptySlug     Code = "EVENT_EMPTY_SLUG"
	CodeEventEmptyName     Code = "EVENT_EMPTY_NAME"
	CodeEventUnknownParent Code = "EVENT_UNKNOWN_PARENT"

	// Run errors
	CodeRunInvalidNumber Code = "RUN_INVALID_NUMBER"
	CodeRunEmptyEvent    Code = "RUN_EMPTY_EVENT"

	// Character errors
	CodeCharacterInvalidNumber Code = "CHARACTER_INVALID_NUMBER"
	CodeCharacterEmptyName     Code = "CHARACTER_EMPTY_NAME"
	CodeCharacterEmptyEvent    Code = "CHARACTER_EMPTY_EVENT"

	// Faction errors
	CodeFactionInvalidNumber Code = "FACTION_INVALID_NUMBER"
	CodeFactionInvalidType   Code = "FACTION_INVALID_TYPE"
	CodeFactionReservedZero  Code = "FACTION_RESERVED_ZERO"

	// Quest/trait errors
	CodeQuestInvalidNumber Code = "QUEST_INVALID_NUMBER"
	CodeQuestUnknownType   Code = "QUEST_UNKNOWN_TYPE"
	CodeTraitInvalidNumber Code = "TRAIT_INVALID_NUMBER"
	CodeTraitUnknownQuest  Code = "TRAIT_UNKNOWN_QUEST"

	// Question/answer errors
	CodeQuestionEmptyUUID   Code = "QUESTION_EMPTY_UUID"
	CodeQuestionInvalidType Code = "QUESTION_INVALID_TYPE"

	// Registration errors
	CodeRegistrationEmptyPlayer    Code = "REGISTRATION_EMPTY_PLAYER"
	CodeRegistrationEmptyCharacter Code = "REGISTRATION_EMPTY_CHARACTER"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeEventNotFound      Code = "EVENT_NOT_FOUND"
	CodeRunNotFound        Code = "RUN_NOT_FOUND"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// Snapshot errors
	CodeSnapshotBuildFailed Code = "SNAPSHOT_BUILD_FAILED"
	CodeFeatureDisabled     Code = "FEATURE_DISABLED"
)

// HTTPStatus maps domain codes to HTTP status codes for client responses.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeMalformedRequest,
		CodeEventEmptySlug,
		CodeEventEmptyName,
		CodeRunInvalidNumber,
		CodeRunEmptyEvent,
		CodeCharacterInvalidNumber,
		CodeCharacterEmptyName,
		CodeCharacterEmptyEvent,
		CodeFactionInvalidNumber,
		CodeFactionInvalidType,
		CodeFactionReservedZero,
		CodeQuestInvalidNumber,
		CodeTraitInvalidNumber,
		CodeQuestionEmptyUUID,
		CodeQuestionInvalidType,
		CodeRegistrationEmptyPlayer,
		CodeRegistrationEmptyCharacter:
		return http.StatusBadRequest

	// Not found - missing referenced entities
	case CodeNotFound,
		CodeEventNotFound,
		CodeRunNotFound,
		CodeEventUnknownParent,
		CodeQuestUnknownType,
		CodeTraitUnknownQuest,
		CodeFeatureDisabled:
		return http.StatusNotFound

	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
