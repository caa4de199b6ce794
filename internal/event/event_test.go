package event

import (
	"errors"
	"testing"
)

func TestEventValidate(t *testing.T) {
	valid := Event{Slug: "alpha", Name: "Alpha"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Event{Name: "Alpha"}).Validate(); !errors.Is(err, ErrEmptySlug) {
		t.Fatalf("expected ErrEmptySlug, got %v", err)
	}
	if err := (Event{Slug: "alpha"}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestRunValidate(t *testing.T) {
	if err := (Run{EventSlug: "alpha", Number: 1}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Run{EventSlug: "alpha"}).Validate(); !errors.Is(err, ErrInvalidRunNumber) {
		t.Fatalf("expected ErrInvalidRunNumber, got %v", err)
	}
}

func TestCharacterFactionNumbers(t *testing.T) {
	assigned := Character{Number: 1, Factions: []int{5, 7}}
	got := assigned.FactionNumbers()
	if len(got) != 2 || got[0] != 5 || got[1] != 7 {
		t.Fatalf("unexpected faction numbers: %v", got)
	}

	// No primary faction reports the synthetic bucket.
	unassigned := Character{Number: 2}
	got = unassigned.FactionNumbers()
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected [0], got %v", got)
	}
}

func TestFactionValidate(t *testing.T) {
	valid := Faction{Number: 5, Typ: FactionTypePrimary}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Faction{Number: 0, Typ: FactionTypePrimary}).Validate(); !errors.Is(err, ErrReservedFactionZero) {
		t.Fatalf("expected ErrReservedFactionZero, got %v", err)
	}
	if err := (Faction{Number: 3, Typ: FactionType("OTHER")}).Validate(); !errors.Is(err, ErrInvalidFactionType) {
		t.Fatalf("expected ErrInvalidFactionType, got %v", err)
	}
}

func TestBoolConfig(t *testing.T) {
	cases := []struct {
		value   string
		present bool
		def     bool
		want    bool
	}{
		{"true", true, false, true},
		{"1", true, false, true},
		{"off", true, true, false},
		{"", false, true, true},
		{"garbage", true, false, false},
		{"garbage", true, true, true},
	}
	for _, tc := range cases {
		if got := BoolConfig(tc.value, tc.present, tc.def); got != tc.want {
			t.Fatalf("BoolConfig(%q, %v, %v) = %v, want %v", tc.value, tc.present, tc.def, got, tc.want)
		}
	}
}
