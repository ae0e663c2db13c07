package driver

import (
	"testing"
	"time"

	"github.com/outlaybuild/forge/graph"
)

func TestSummarizeCountsOutcomesAndDurations(t *testing.T) {
	now := time.Now()
	built := &graph.Action{Kind: graph.KindCompile, StartTime: now, EndTime: now.Add(2 * time.Second)}
	failed := &graph.Action{Kind: graph.KindCompile, ExitCode: 1, StartTime: now, EndTime: now.Add(time.Second)}
	skipped := &graph.Action{Kind: graph.KindLink, Skipped: true}

	s := Summarize([]*graph.Action{built, failed, skipped})
	if s.Built != 1 || s.Failed != 1 || s.Skipped != 1 || s.Total != 3 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.TotalDuration != 3*time.Second {
		t.Fatalf("expected 3s total duration, got %v", s.TotalDuration)
	}
	if s.ByKind[graph.KindCompile] != 3*time.Second {
		t.Fatalf("expected compile kind to total 3s, got %v", s.ByKind[graph.KindCompile])
	}
}

func TestMostExpensiveOrdersByDurationDescending(t *testing.T) {
	now := time.Now()
	short := &graph.Action{CommandPath: "short", StartTime: now, EndTime: now.Add(time.Second)}
	long := &graph.Action{CommandPath: "long", StartTime: now, EndTime: now.Add(10 * time.Second)}

	s := Summarize([]*graph.Action{short, long})
	top := s.MostExpensive(1)
	if len(top) != 1 || top[0] != long {
		t.Fatalf("expected the longest action first, got %v", top)
	}
}
