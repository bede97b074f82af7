package core

import (
	"testing"
	"time"
)

func TestMemberDisplayName(t *testing.T) {
	m := Member{Name: "Mario", Surname: "Rossi"}
	if got := m.DisplayName(); got != "Mario Rossi" {
		t.Errorf("DisplayName() = %q, want %q", got, "Mario Rossi")
	}

	m.Nickname = "Super Mario"
	if got := m.DisplayName(); got != "Super Mario" {
		t.Errorf("DisplayName() with nickname = %q, want %q", got, "Super Mario")
	}
}

func TestMemberMatches(t *testing.T) {
	m := Member{Name: "Mario", Surname: "Rossi"}

	if !m.Matches("mario", "ROSSI") {
		t.Error("Matches should compare case-insensitively")
	}
	if m.Matches("Mario", "Bianchi") {
		t.Error("Matches should reject a different surname")
	}
}

func TestCategoryAssignable(t *testing.T) {
	micro := Category{Type: CategoryMicro}
	if !micro.Assignable("late_training") {
		t.Error("micro category should be assignable")
	}

	macro := Category{Type: CategoryMacro}
	if macro.Assignable("discipline") {
		t.Error("macro category should not be assignable")
	}

	// The reserved ics key is assignable whatever type an older
	// document stored for it.
	ics := Category{Type: CategoryMacro}
	if !ics.Assignable(ICSCategoryKey) {
		t.Error("ics category should be assignable regardless of stored type")
	}
}

func TestNewLedger(t *testing.T) {
	l := NewLedger()

	if l.Members == nil || l.Activities == nil || l.ICSEvents == nil || l.GlobalDonations == nil {
		t.Fatal("NewLedger should initialize every slice")
	}
	ics, ok := l.Categories[ICSCategoryKey]
	if !ok {
		t.Fatal("NewLedger should seed the ics category")
	}
	if ics.Deletable {
		t.Error("ics category must not be deletable")
	}
	if ics.Type != CategoryMicro {
		t.Errorf("ics category type = %q, want a leaf", ics.Type)
	}
	if ics.Amount != 1 {
		t.Errorf("ics default amount = %v, want 1", ics.Amount)
	}
}

func TestNormalize(t *testing.T) {
	l := &Ledger{}
	l.Normalize()

	if l.Categories == nil {
		t.Fatal("Normalize should initialize the category map")
	}
	if _, ok := l.Categories[ICSCategoryKey]; !ok {
		t.Error("Normalize should re-seed a missing ics category")
	}
	if l.Members == nil || l.Activities == nil || l.ICSEvents == nil || l.GlobalDonations == nil {
		t.Error("Normalize should initialize nil slices")
	}

	// An existing ics category survives untouched.
	l.Categories[ICSCategoryKey] = Category{Name: "Match fee", Amount: 2, Type: CategoryMacro, Active: true}
	l.Normalize()
	if l.Categories[ICSCategoryKey].Amount != 2 {
		t.Error("Normalize should not overwrite an existing ics category")
	}
}

func TestCloneMembersIsDeep(t *testing.T) {
	orig := []Member{{
		ID:        "m1",
		Name:      "Mario",
		Surname:   "Rossi",
		Active:    true,
		Fines:     []Fine{{Category: "late_training", Amount: 5, Date: "2025-09-01"}},
		Donations: []Donation{{ID: "d1", Amount: 10, Date: "2025-09-02"}},
	}}

	clone := CloneMembers(orig)
	clone[0].Fines[0].Paid = true
	clone[0].Donations[0].Amount = 99

	if orig[0].Fines[0].Paid {
		t.Error("mutating cloned fines should not touch the original")
	}
	if orig[0].Donations[0].Amount != 10 {
		t.Error("mutating cloned donations should not touch the original")
	}
}

func TestCloneCategories(t *testing.T) {
	orig := map[string]Category{"x": {Name: "X", Active: true}}
	clone := CloneCategories(orig)
	clone["x"] = Category{Name: "Y"}

	if orig["x"].Name != "X" {
		t.Error("mutating the cloned map should not touch the original")
	}
}

func TestParseDate(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "calendar date", input: "2025-09-15", want: time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 timestamp", input: "2025-09-15T10:30:00Z", want: time.Date(2025, 9, 15, 10, 30, 0, 0, time.UTC)},
		{name: "empty", input: "", want: epoch},
		{name: "garbage", input: "not-a-date", want: epoch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoryName(t *testing.T) {
	l := NewLedger()
	l.Categories["late_training"] = Category{Name: "Late to training"}

	if got := l.CategoryName("late_training"); got != "Late to training" {
		t.Errorf("CategoryName = %q, want display name", got)
	}
	if got := l.CategoryName("deleted_key"); got != "deleted_key" {
		t.Errorf("CategoryName for unknown key = %q, want the raw key", got)
	}
}
