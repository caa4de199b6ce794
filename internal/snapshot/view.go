package snapshot

import (
	"encoding/json"
	"sort"

	"github.com/ebriony/castlight/internal/event"
)

// FieldValue holds one writing-question answer on a character view: free
// text for text questions, selected option uuids for choice questions.
// Exactly one of the two is set.
type FieldValue struct {
	Text    string   `json:"text,omitempty"`
	Options []string `json:"options,omitempty"`
}

// CharacterView is the denormalized gallery view of one character.
type CharacterView struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Teaser string `json:"teaser,omitempty"`
	Text   string `json:"text,omitempty"`
	// Fields maps question uuid to the character's answer.
	Fields map[string]FieldValue `json:"fields,omitempty"`
	// Player augmentation, filled from the run's registration.
	PlayerID   string `json:"player_uuid,omitempty"`
	PlayerFull string `json:"player_full,omitempty"`
	PlayerProf string `json:"player_prof,omitempty"`
	// Hide marks characters kept out of gallery listings while still being
	// part of the snapshot.
	Hide bool `json:"hide,omitempty"`
	// Factions holds the numbers of the factions the character belongs to;
	// 0 is the synthetic "no primary faction" bucket.
	Factions []int `json:"factions"`
	// Traits is only populated when the quest-builder feature is active.
	Traits []int `json:"traits,omitempty"`
}

// HasFaction reports whether the view belongs to faction number.
func (v *CharacterView) HasFaction(number int) bool {
	for _, n := range v.Factions {
		if n == number {
			return true
		}
	}
	return false
}

// FactionView is the denormalized view of one faction, including its member
// character numbers.
type FactionView struct {
	Number     int               `json:"number"`
	Name       string            `json:"name"`
	Typ        event.FactionType `json:"typ"`
	Teaser     string            `json:"teaser,omitempty"`
	Characters []int             `json:"characters"`
}

// QuestTypeView is the denormalized view of one quest type.
type QuestTypeView struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// QuestView is the denormalized view of one quest. Typ references the quest
// type's number.
type QuestView struct {
	Number int    `json:"number"`
	Typ    int    `json:"typ"`
	Name   string `json:"name"`
	Teaser string `json:"teaser,omitempty"`
}

// TraitView is the denormalized view of one trait. Char holds the assigned
// character's number, 0 while unassigned.
type TraitView struct {
	Number int    `json:"number"`
	Quest  int    `json:"quest"`
	Typ    int    `json:"typ"`
	Name   string `json:"name"`
	Teaser string `json:"teaser,omitempty"`
	// Traits lists related trait numbers, self excluded.
	Traits []int `json:"traits,omitempty"`
	Char   int   `json:"char,omitempty"`
}

// Snapshot is the cached read model for one (event, run) pair. All maps are
// keyed by business number; internal ids only appear in the mapping sections.
type Snapshot struct {
	Chars       map[int]*CharacterView      `json:"chars"`
	CharMapping map[int]int64               `json:"char_mapping"`
	Factions    map[int]*FactionView        `json:"factions"`
	FactionsTyp map[event.FactionType][]int `json:"factions_typ"`
	FacMapping  map[int]int64               `json:"fac_mapping"`
	QuestTypes  map[int]*QuestTypeView      `json:"quest_types,omitempty"`
	Quests      map[int]*QuestView          `json:"quests,omitempty"`
	Traits      map[int]*TraitView          `json:"traits,omitempty"`
	MaxChNumber int                         `json:"max_ch_number"`
	MaxTrNumber int                         `json:"max_tr_number,omitempty"`
}

// NewSnapshot creates a snapshot with the always-present sections allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Chars:       make(map[int]*CharacterView),
		CharMapping: make(map[int]int64),
		Factions:    make(map[int]*FactionView),
		FactionsTyp: make(map[event.FactionType][]int),
		FacMapping:  make(map[int]int64),
	}
}

// CharacterNumbers returns the snapshot's character numbers in ascending
// order.
func (s *Snapshot) CharacterNumbers() []int {
	numbers := make([]int, 0, len(s.Chars))
	for number := range s.Chars {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)
	return numbers
}

// CharacterByID resolves a character view through the internal-id mapping.
func (s *Snapshot) CharacterByID(id int64) (*CharacterView, bool) {
	for number, mapped := range s.CharMapping {
		if mapped == id {
			view, ok := s.Chars[number]
			return view, ok
		}
	}
	return nil, false
}

// Encode serializes the snapshot for the cache store.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode deserializes a cached snapshot payload.
func Decode(payload []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
