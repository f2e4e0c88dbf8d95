package highlight

import (
	"testing"
	"time"

	"github.com/boardcut/boardcut/internal/domain/entities"
	"github.com/boardcut/boardcut/pkg/config"
)

func newTestService() *highlightService {
	return &highlightService{
		cfg: &config.Config{
			Pipeline: config.PipelineConfig{
				MinOpenWords: 10,
				GlueWindow:   30 * time.Second,
				GlueLines:    5,
				HandoffRule:  "next-speaker",
			},
		},
	}
}

func TestSegmentPolicy_Defaults(t *testing.T) {
	s := newTestService()
	job := entities.NewHighlightJob("Pat Quinn", "https://example.com/rec.mp4", entities.SegmentPolicy{})

	p := s.segmentPolicy(job, "Alex Morgan")

	if p.TargetSpeaker != "Pat Quinn" {
		t.Errorf("TargetSpeaker = %q, want %q", p.TargetSpeaker, "Pat Quinn")
	}
	if p.ChairName != "Alex Morgan" {
		t.Errorf("ChairName = %q, want %q", p.ChairName, "Alex Morgan")
	}
	if p.MinOpenWords != 10 {
		t.Errorf("MinOpenWords = %d, want 10", p.MinOpenWords)
	}
	if p.GlueWindow != 30*time.Second {
		t.Errorf("GlueWindow = %v, want 30s", p.GlueWindow)
	}
	if p.GlueLines != 5 {
		t.Errorf("GlueLines = %d, want 5", p.GlueLines)
	}
	if p.Handoff.Name() != "next-speaker" {
		t.Errorf("Handoff = %q, want %q", p.Handoff.Name(), "next-speaker")
	}
}

func TestSegmentPolicy_JobOverrides(t *testing.T) {
	s := newTestService()
	job := entities.NewHighlightJob("Pat Quinn", "https://example.com/rec.mp4", entities.SegmentPolicy{
		MinOpenWords: 15,
		GlueSeconds:  45,
		GlueLines:    8,
		PreSeconds:   2.5,
		HandoffRule:  "titled",
	})

	p := s.segmentPolicy(job, "Alex Morgan")

	if p.MinOpenWords != 15 {
		t.Errorf("MinOpenWords = %d, want 15", p.MinOpenWords)
	}
	if p.GlueWindow != 45*time.Second {
		t.Errorf("GlueWindow = %v, want 45s", p.GlueWindow)
	}
	if p.GlueLines != 8 {
		t.Errorf("GlueLines = %d, want 8", p.GlueLines)
	}
	if p.PreContext != 2500*time.Millisecond {
		t.Errorf("PreContext = %v, want 2.5s", p.PreContext)
	}
	if p.Handoff.Name() != "titled" {
		t.Errorf("Handoff = %q, want %q", p.Handoff.Name(), "titled")
	}
}
