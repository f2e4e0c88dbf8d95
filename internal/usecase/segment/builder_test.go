package segment

import (
	"strings"
	"testing"
	"time"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

const (
	target = "Pat Quinn"
	chair  = "Alex Morgan"
)

// tenWords has exactly 10 words, nineWords exactly 9.
const (
	tenWords  = "I want to raise several concerns about the budget proposal"
	nineWords = "I want to raise several concerns about the budget"
)

func mk(speaker, text string, start, end float64) entities.AlignedLine {
	return entities.AlignedLine{Speaker: speaker, Text: text, Start: start, End: end}
}

func testPolicy() Policy {
	return DefaultPolicy(target, chair)
}

func TestBuild_TenWordsOpensNineDoesNot(t *testing.T) {
	b := NewBuilder(testPolicy())

	res := b.Build([]entities.AlignedLine{
		mk(chair, "Next item on the agenda.", 0, 2),
		mk(target, nineWords, 2, 6),
	})
	if len(res.Segments) != 0 {
		t.Fatalf("9-word line opened a segment: %+v", res.Segments)
	}

	res = b.Build([]entities.AlignedLine{
		mk(chair, "Next item on the agenda.", 0, 2),
		mk(target, nineWords, 2, 6),
		mk(target, tenWords, 6, 12),
	})
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(res.Segments))
	}
	seg := res.Segments[0]
	if seg.Start != 6 || seg.End != 12 {
		t.Errorf("segment spans [%.2f, %.2f], want [6, 12]", seg.Start, seg.End)
	}
	if len(seg.Lines) != 1 || seg.Lines[0].Text != tenWords {
		t.Errorf("segment should hold only the opening line, got %+v", seg.Lines)
	}
}

// handoffTranscript builds: a target segment closed by chair hand-off, then
// several unrelated lines, then a second qualifying target line whose start
// time is gapStart seconds.
func handoffTranscript(gapStart float64) []entities.AlignedLine {
	return []entities.AlignedLine{
		mk(target, tenWords, 0, 8),
		mk(chair, "Thank you. Director Lee, you have the floor.", 8, 10),
		mk("Jordan Lee", "Thanks. A few notes from the operations side.", 10, 14),
		mk("Jordan Lee", "First, ridership is up again this quarter.", 14, 18),
		mk("Jordan Lee", "Second, the elevator repairs finished ahead of schedule.", 18, 22),
		mk(chair, "Thank you Jordan. Public comment is now open.", 22, 24),
		mk("Speaker 1", "I ride the train every day and have thoughts.", 24, 28),
		mk("Speaker 2", "Same here, mostly about the weekend schedule.", 28, 30),
		mk(target, tenWords, gapStart, gapStart+6),
	}
}

func TestBuild_GlueWithin30Seconds(t *testing.T) {
	// First target run ends at 8.0; a 29 second gap reopens it.
	res := NewBuilder(testPolicy()).Build(handoffTranscript(37))
	if len(res.Segments) != 1 {
		t.Fatalf("expected glued single segment, got %d", len(res.Segments))
	}
	seg := res.Segments[0]
	if seg.Start != 0 || seg.End != 43 {
		t.Errorf("glued segment spans [%.2f, %.2f], want [0, 43]", seg.Start, seg.End)
	}
	// Intervening material stays inside the merged segment.
	if len(seg.Lines) != 9 {
		t.Errorf("glued segment holds %d lines, want all 9", len(seg.Lines))
	}
}

func TestBuild_NoGlueBeyond30Seconds(t *testing.T) {
	res := NewBuilder(testPolicy()).Build(handoffTranscript(39.5))
	if len(res.Segments) != 2 {
		t.Fatalf("expected two distinct segments, got %d", len(res.Segments))
	}
	if res.Segments[0].End != 8 {
		t.Errorf("first segment ends at %.2f, want 8", res.Segments[0].End)
	}
	if res.Segments[1].Start != 39.5 {
		t.Errorf("second segment starts at %.2f, want 39.5", res.Segments[1].Start)
	}
}

func TestBuild_GlueByLineCount(t *testing.T) {
	// Gap far beyond the time window, but only two lines apart.
	lines := []entities.AlignedLine{
		mk(target, tenWords, 0, 8),
		mk(chair, "Director Lee, anything to add?", 8, 10),
		mk("Jordan Lee", "No, nothing from me.", 10, 12),
		mk(target, tenWords, 120, 126),
	}
	res := NewBuilder(testPolicy()).Build(lines)
	if len(res.Segments) != 1 {
		t.Fatalf("expected line-count glue to merge, got %d segments", len(res.Segments))
	}
	if got := res.Segments[0].End; got != 126 {
		t.Errorf("merged segment ends at %.2f, want 126", got)
	}
}

func TestBuild_ChairHandoffClosesBeforeChairLine(t *testing.T) {
	twelveWords := "Thank you all for coming today I have three items to report"
	lines := []entities.AlignedLine{
		mk(target, twelveWords, 0, 8),
		mk(chair, "Director Lee, you're next.", 8, 10),
		mk("Jordan Lee", "Happy to jump in.", 10, 15),
	}
	res := NewBuilder(testPolicy()).Build(lines)
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(res.Segments))
	}
	seg := res.Segments[0]
	if seg.Start != 0 || seg.End != 8 {
		t.Errorf("segment spans [%.2f, %.2f], want [0, 8]", seg.Start, seg.End)
	}
	if len(seg.Lines) != 1 {
		t.Errorf("hand-off line leaked into segment: %+v", seg.Lines)
	}
}

func TestBuild_StaffNamingDoesNotClose(t *testing.T) {
	lines := []entities.AlignedLine{
		mk(target, tenWords, 0, 8),
		mk(chair, "I'll ask staff counsel Jones to walk us through the numbers.", 8, 12),
		mk("Sam Jones", "Of course. The figures are on page four.", 12, 18),
	}
	res := NewBuilder(testPolicy()).Build(lines)
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(res.Segments))
	}
	seg := res.Segments[0]
	if seg.End != 18 || len(seg.Lines) != 3 {
		t.Errorf("segment should stay open through staff remarks, got end %.2f with %d lines", seg.End, len(seg.Lines))
	}
}

func TestBuild_EndOfTranscriptCloses(t *testing.T) {
	lines := []entities.AlignedLine{
		mk(target, tenWords, 0, 8),
		mk(target, "And one more thing before we wrap up here today everyone.", 8, 14),
	}
	res := NewBuilder(testPolicy()).Build(lines)
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(res.Segments))
	}
	if got := res.Segments[0].End; got != 14 {
		t.Errorf("synthesized end is %.2f, want last line end 14", got)
	}

	var sb strings.Builder
	if err := res.Render(&sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := sb.String()
	if !strings.HasSuffix(doc, MarkerEnd+"\n") {
		t.Errorf("document should end with synthesized %s:\n%s", MarkerEnd, doc)
	}
	if !strings.HasPrefix(doc, MarkerStart+"\n") {
		t.Errorf("document should begin with %s:\n%s", MarkerStart, doc)
	}
}

func TestBuild_SkipsMalformedLinesWithWarning(t *testing.T) {
	lines := []entities.AlignedLine{
		mk("", "who said this", 0, 2),
		mk(target, tenWords, 2, 8),
		mk(target, tenWords, 9, 7), // end before start
	}
	res := NewBuilder(testPolicy()).Build(lines)
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", res.Warnings)
	}
	if len(res.Segments) != 1 || res.Segments[0].End != 8 {
		t.Errorf("valid line should still produce a segment: %+v", res.Segments)
	}
}

func TestBuild_PreContextClamps(t *testing.T) {
	p := testPolicy()
	p.PreContext = 5 * time.Second
	lines := []entities.AlignedLine{
		mk(target, tenWords, 3, 8),
	}
	res := NewBuilder(p).Build(lines)
	if len(res.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(res.Segments))
	}
	if got := res.Segments[0].Start; got != 0 {
		t.Errorf("pre-context start is %.2f, want clamp to 0", got)
	}
}

func TestBuild_TitledHandoffClosesWithoutFollowup(t *testing.T) {
	lines := []entities.AlignedLine{
		mk(target, tenWords, 0, 8),
		mk(chair, "Director Lee made a good point at the last meeting.", 8, 12),
		mk(target, "Agreed.", 12, 13),
	}

	res := NewBuilder(testPolicy()).Build(lines)
	if len(res.Segments) != 1 || res.Segments[0].End != 13 {
		t.Fatalf("next-speaker rule should keep the segment open, got %+v", res.Segments)
	}

	p := testPolicy()
	p.Handoff = TitledHandoff{}
	res = NewBuilder(p).Build(lines)
	if len(res.Segments) != 1 || res.Segments[0].End != 8 {
		t.Fatalf("titled rule should close before the chair line, got %+v", res.Segments)
	}
}

func TestRuleFor(t *testing.T) {
	if got := RuleFor("titled").Name(); got != "titled" {
		t.Errorf("RuleFor(titled) = %s", got)
	}
	if got := RuleFor("nonsense").Name(); got != "next-speaker" {
		t.Errorf("RuleFor should fall back to next-speaker, got %s", got)
	}
}
