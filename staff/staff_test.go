package staff

import (
	"testing"
	"time"
)

func TestResolveWorkerScansCategoriesInOrder(t *testing.T) {
	dir := &Directory{
		Maid: []Provider{{UserID: "w1", Name: "as maid"}},
		Cook: []Provider{{UserID: "w1", Name: "as cook"}, {UserID: "w2", Name: "cook two"}},
	}

	serviceType, p := resolveWorker(dir, "w1")
	if serviceType != "maid" || p == nil || p.Name != "as maid" {
		t.Errorf("expected earliest category to win, got %q %+v", serviceType, p)
	}

	serviceType, p = resolveWorker(dir, "w2")
	if serviceType != "cook" || p == nil {
		t.Errorf("expected cook match for w2, got %q %+v", serviceType, p)
	}

	if serviceType, p = resolveWorker(dir, "missing"); serviceType != "" || p != nil {
		t.Error("expected no match for unknown worker")
	}
}

func TestResolveWorkerReturnsAddressableProvider(t *testing.T) {
	dir := &Directory{Driver: []Provider{{UserID: "d1"}}}
	_, p := resolveWorker(dir, "d1")
	p.Name = "renamed"
	if dir.Driver[0].Name != "renamed" {
		t.Error("expected pointer into the directory, got a copy")
	}
}

func TestHasOpenRecord(t *testing.T) {
	in := time.Now()
	out := in.Add(2 * time.Hour)

	records := []Record{
		{UserID: "w1", CheckInDateTime: &in, CheckOutDateTime: &out},
		{UserID: "w2", CheckInDateTime: &in},
	}

	if hasOpenRecord(records, "w1") {
		t.Error("closed cycle should not count as open")
	}
	if !hasOpenRecord(records, "w2") {
		t.Error("missing check-out should count as open")
	}
	if hasOpenRecord(records, "w3") {
		t.Error("unknown worker should not be open")
	}
}

func TestMergeListEntriesReplacesByUserID(t *testing.T) {
	existing := []ListEntry{
		{UserID: "r1", Timings: "morning"},
		{UserID: "r2", Timings: "evening"},
	}
	incoming := []ListEntry{
		{UserID: "r2", Timings: "noon"},
		{UserID: "r3", Timings: "night"},
	}

	out := mergeListEntries(existing, incoming)
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	if out[1].UserID != "r2" || out[1].Timings != "noon" {
		t.Errorf("expected r2 replaced in place, got %+v", out[1])
	}
	if out[2].UserID != "r3" {
		t.Errorf("expected r3 appended, got %+v", out[2])
	}
	if existing[1].Timings != "evening" {
		t.Error("merge must not mutate the existing slice")
	}
}

func TestValidServiceType(t *testing.T) {
	for _, s := range ServiceTypes {
		if !validServiceType(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if validServiceType("gardener") {
		t.Error("unknown category should be rejected")
	}
}
