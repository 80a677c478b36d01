package progress

import (
	"testing"

	"coursehub/internal/catalog"
	"coursehub/internal/testutil"
)

func TestSummarize_IgnoresRemovedTopics(t *testing.T) {
	cat := catalog.New(testutil.Courses())
	got := Summarize(cat, map[string]struct{}{"h1": {}, "gone": {}})
	if got[0].Completed != 1 || got[0].Total != 3 || got[1].Completed != 0 {
		t.Fatalf("summary = %+v", got)
	}
}

func TestNextUncompleted_AllDone(t *testing.T) {
	cat := catalog.New(testutil.Courses())
	done := map[string]struct{}{}
	for _, e := range cat.Entries() {
		done[e.ID] = struct{}{}
	}
	if e, ok := NextUncompleted(cat, done, ""); ok {
		t.Fatalf("NextUncompleted = %+v, want none", e)
	}
}
