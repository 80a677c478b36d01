package catalog

import (
	"strings"
	"testing"

	"coursehub/pkg/models"
)

func TestDiff_Unchanged(t *testing.T) {
	out, err := Diff(New(sampleTree()), New(sampleTree()))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty diff, got:\n%s", out)
	}
}

func TestDiff_ReportsMovedAndAddedTopics(t *testing.T) {
	next := sampleTree()
	next[0].Sections[0].Topics = []models.Topic{topic("t2"), topic("t1"), topic("t9")}

	out, err := Diff(New(sampleTree()), New(next))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !strings.Contains(out, "+A/S1/t9") {
		t.Errorf("diff missing added topic:\n%s", out)
	}
	if !strings.Contains(out, "-A/S1/t1") && !strings.Contains(out, "-A/S1/t2") {
		t.Errorf("diff missing reorder:\n%s", out)
	}
}

func TestDiff_FromNil(t *testing.T) {
	out, err := Diff(nil, New(sampleTree()))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !strings.Contains(out, "+B/S2/t3") {
		t.Errorf("diff from empty:\n%s", out)
	}
}
