package catalog

import (
	"fmt"
	"sync"
	"testing"

	"coursehub/pkg/models"
)

func TestCatalog_MatchesPureFunctions(t *testing.T) {
	cat := New(sampleTree())
	entries := Flatten(sampleTree())

	if cat.Len() != len(entries) {
		t.Fatalf("Len = %d, want %d", cat.Len(), len(entries))
	}
	for _, id := range []string{"t1", "t2", "t3", "ghost"} {
		a, okA := cat.Topic(id)
		b, okB := FindByID(entries, id)
		if okA != okB || a.ID != b.ID || a.Position != b.Position {
			t.Errorf("Topic(%q) = %+v,%v; FindByID = %+v,%v", id, a, okA, b, okB)
		}
		na := cat.Navigation(id)
		nb := GetNavigation(entries, id)
		if refID(na.Prev) != refID(nb.Prev) || refID(na.Next) != refID(nb.Next) {
			t.Errorf("Navigation(%q) differs from GetNavigation", id)
		}
	}
}

func TestCatalog_DuplicateIndexKeepsFirst(t *testing.T) {
	a := topic("x")
	a.Title = "first"
	b := topic("x")
	b.Title = "second"
	cat := New([]models.Course{{Key: "c", Sections: []models.Section{{Key: "s", Topics: []models.Topic{a, topic("y"), b}}}}})
	e, ok := cat.Topic("x")
	if !ok || e.Title != "first" {
		t.Fatalf("Topic(x) = %+v", e)
	}
}

func TestCatalog_Courses(t *testing.T) {
	cat := New(sampleTree())
	got := cat.Courses()
	if len(got) != 2 {
		t.Fatalf("Courses len = %d", len(got))
	}
	if got[0].Key != "A" || got[0].Topics != 2 || got[0].Sections != 1 {
		t.Errorf("course A summary = %+v", got[0])
	}
	if got[1].Key != "B" || got[1].Topics != 1 {
		t.Errorf("course B summary = %+v", got[1])
	}

	if _, ok := cat.Course("B"); !ok {
		t.Error("Course(B) not found")
	}
	if _, ok := cat.Course("nope"); ok {
		t.Error("Course(nope) should miss")
	}
}

func TestCatalog_CourseEntries(t *testing.T) {
	cat := New(sampleTree())
	if got := ids(cat.CourseEntries("A", "")); fmt.Sprint(got) != "[t1 t2]" {
		t.Errorf("CourseEntries(A) = %v", got)
	}
	if got := ids(cat.CourseEntries("B", "S2")); fmt.Sprint(got) != "[t3]" {
		t.Errorf("CourseEntries(B,S2) = %v", got)
	}
	if got := cat.CourseEntries("A", "S2"); len(got) != 0 {
		t.Errorf("CourseEntries(A,S2) = %v", ids(got))
	}
}

func TestStore_SwapPublishesWholeSnapshot(t *testing.T) {
	store := NewStore(New(sampleTree()))
	bigger := append(sampleTree(), models.Course{Key: "C", Sections: []models.Section{
		{Key: "S3", Topics: []models.Topic{topic("t4"), topic("t5")}},
	}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cat := store.Load()
				if n := cat.Len(); n != 3 && n != 5 {
					t.Errorf("observed partial catalog with %d entries", n)
					return
				}
				if _, ok := cat.Topic("t1"); !ok {
					t.Error("t1 missing from snapshot")
					return
				}
			}
		}()
	}

	old := store.Swap(New(bigger))
	wg.Wait()

	if old.Len() != 3 {
		t.Fatalf("old snapshot mutated: len %d", old.Len())
	}
	if store.Load().Len() != 5 {
		t.Fatalf("new snapshot len = %d", store.Load().Len())
	}
}

func TestStore_NilIsEmptyCatalog(t *testing.T) {
	store := NewStore(nil)
	if store.Load().Len() != 0 {
		t.Fatal("expected empty catalog")
	}
	store.Swap(nil)
	if nav := store.Load().Navigation("x"); nav.Prev != nil || nav.Next != nil {
		t.Fatal("empty catalog should have no navigation")
	}
}
