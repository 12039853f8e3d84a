package visitors

import (
	"testing"
	"time"
)

func ts(s string) *time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return &t
}

func TestDecideCheckIn(t *testing.T) {
	cases := []struct {
		name string
		v    Visitor
		want checkInAction
	}{
		{"fresh entry gets updated in place", Visitor{}, actionUpdate},
		{"open entry is a conflict", Visitor{CheckInDateTime: ts("2026-08-01T10:00:00Z")}, actionConflict},
		{"completed cycle appends a new entry", Visitor{
			CheckInDateTime:  ts("2026-08-01T10:00:00Z"),
			CheckOutDateTime: ts("2026-08-01T12:00:00Z"),
		}, actionAppend},
	}
	for _, c := range cases {
		if got := decideCheckIn(c.v); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestLatestByVisitorID(t *testing.T) {
	entries := []Visitor{
		{EntryID: "e1", VisitorID: "111111", Name: "first"},
		{EntryID: "e2", VisitorID: "222222"},
		{EntryID: "e3", VisitorID: "111111", Name: "latest"},
	}

	got := latestByVisitorID(entries, "111111")
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.EntryID != "e3" {
		t.Errorf("expected most recent entry e3, got %s", got.EntryID)
	}

	if latestByVisitorID(entries, "999999") != nil {
		t.Error("expected nil for unknown visitor code")
	}
}

func TestLatestFrequentEntrySelectsOneCycle(t *testing.T) {
	entries := []Visitor{
		{EntryID: "e1", VisitorID: "111111", Block: "A", FlatNo: "101", Role: "Guest", IsFrequent: true},
		{EntryID: "e2", VisitorID: "111111", Block: "A", FlatNo: "101", Role: "Guest", IsFrequent: true},
		{EntryID: "e3", VisitorID: "111111", Block: "A", FlatNo: "102", Role: "Guest", IsFrequent: true},
		{EntryID: "e4", VisitorID: "111111", Block: "A", FlatNo: "101", Role: "Delivery", IsFrequent: true},
		{EntryID: "e5", VisitorID: "111111", Block: "A", FlatNo: "101", Role: "Guest"},
	}

	got := latestFrequentEntry(entries, "111111", "A", "101")
	if got == nil {
		t.Fatal("expected a match")
	}
	// Repeat cycles share the visitor code; only the latest one is targeted,
	// earlier history stays intact.
	if got.EntryID != "e2" {
		t.Errorf("expected latest frequent cycle e2, got %s", got.EntryID)
	}

	if latestFrequentEntry(entries, "111111", "B", "101") != nil {
		t.Error("expected nil for a different flat")
	}
	if latestFrequentEntry(entries, "999999", "A", "101") != nil {
		t.Error("expected nil for unknown visitor code")
	}
}

func TestLatestByVisitorIDReturnsAddressableEntry(t *testing.T) {
	entries := []Visitor{{EntryID: "e1", VisitorID: "111111"}}
	got := latestByVisitorID(entries, "111111")
	got.Status = StatusCheckIn
	if entries[0].Status != StatusCheckIn {
		t.Error("expected pointer into the slice, got a copy")
	}
}
