package cache

import (
	"testing"

	"github.com/logview-dev/logview/internal/model"
)

func TestReplaceAndRecords(t *testing.T) {
	h := New()

	if _, _, ok := h.Records(); ok {
		t.Fatal("cache reported records before any scan")
	}

	first := []model.Record{{Path: "a.json", Fields: map[string]model.Value{"v": model.Number(1)}}}
	session1 := h.Replace(first)

	got, session, ok := h.Records()
	if !ok || session != session1 {
		t.Fatalf("Records() = (%v, %q, %v), want session %q", got, session, ok, session1)
	}
	if len(got) != 1 || got[0].Path != "a.json" {
		t.Fatalf("unexpected cached records: %+v", got)
	}

	// Replacement is wholesale: new session, old rows gone.
	second := []model.Record{
		{Path: "b.json", Fields: map[string]model.Value{}},
		{Path: "c.json", Fields: map[string]model.Value{}},
	}
	session2 := h.Replace(second)
	if session2 == session1 {
		t.Fatal("Replace reused the previous session id")
	}
	got, _, ok = h.Records()
	if !ok || len(got) != 2 {
		t.Fatalf("expected 2 records after replace, got %d (ok=%v)", len(got), ok)
	}

	h.Clear()
	if _, _, ok := h.Records(); ok {
		t.Fatal("cache reported records after Clear")
	}
}
