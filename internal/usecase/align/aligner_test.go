package align

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

func line(speaker, text string) entities.TranscriptLine {
	return entities.TranscriptLine{Speaker: speaker, Text: text}
}

func captionsFor(texts []string, secondsPerCaption float64) []entities.Caption {
	caps := make([]entities.Caption, len(texts))
	cur := 0.0
	for i, t := range texts {
		caps[i] = entities.Caption{Start: cur, End: cur + secondsPerCaption, Text: t}
		cur += secondsPerCaption
	}
	return caps
}

func TestAlignLines_CountAndMonotonic(t *testing.T) {
	lines := []entities.TranscriptLine{
		line("A", "good morning and welcome to the board meeting"),
		line("B", "thank you chair it is good to be here"),
		line("A", "first item on the agenda is the budget"),
		line("B", "the budget was reviewed by the finance committee last week"),
	}
	caps := captionsFor([]string{
		"good morning and welcome to the board meeting",
		"thank you chair it is good to be here",
		"first item on the agenda is the budget",
		"the budget was reviewed by the finance committee last week",
	}, 4)

	out, err := AlignLines(lines, caps, DefaultOptions())
	if err != nil {
		t.Fatalf("AlignLines failed: %v", err)
	}
	if len(out) != len(lines) {
		t.Fatalf("expected %d aligned lines, got %d", len(lines), len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Start < out[i-1].Start {
			t.Fatalf("start times not monotonic at %d: %v < %v", i, out[i].Start, out[i-1].Start)
		}
	}
	for i, al := range out {
		if al.End < al.Start {
			t.Fatalf("line %d end %v before start %v", i, al.End, al.Start)
		}
	}
	if out[0].Start != 0 {
		t.Fatalf("first line should start at stream start, got %v", out[0].Start)
	}
}

func TestAlignLines_Idempotent(t *testing.T) {
	lines := []entities.TranscriptLine{
		line("A", "calling this meeting to order at nine sharp"),
		line("B", "the minutes from last month were circulated in advance"),
		line("A", "any corrections to the minutes as distributed"),
	}
	caps := captionsFor([]string{
		"calling this meeting to order at nine sharp",
		"the minutes from last month were circulated in advance",
		"any corrections to the minutes as distributed",
	}, 7)

	first, err := AlignLines(lines, caps, DefaultOptions())
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}

	// Derive captions from the first pass output and realign: zero drift.
	derived := make([]entities.Caption, len(first))
	for i, al := range first {
		derived[i] = entities.Caption{Start: al.Start, End: al.End, Text: al.Text}
	}
	second, err := AlignLines(lines, derived, DefaultOptions())
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	for i := range first {
		if math.Abs(first[i].Start-second[i].Start) > 1e-9 {
			t.Fatalf("line %d start drifted: %v vs %v", i, first[i].Start, second[i].Start)
		}
		if math.Abs(first[i].End-second[i].End) > 1e-9 {
			t.Fatalf("line %d end drifted: %v vs %v", i, first[i].End, second[i].End)
		}
	}
}

func TestAlignLines_Deterministic(t *testing.T) {
	lines := []entities.TranscriptLine{
		line("A", "the quarterly report shows steady growth in ridership"),
		line("B", "ridership growth was strongest on the weekend service"),
	}
	caps := captionsFor([]string{
		"the quarterly report shows steady growth in ridership",
		"ridership growth was strongest on the weekend service",
	}, 5)

	a, err := AlignLines(lines, caps, DefaultOptions())
	if err != nil {
		t.Fatalf("AlignLines failed: %v", err)
	}
	b, err := AlignLines(lines, caps, DefaultOptions())
	if err != nil {
		t.Fatalf("AlignLines failed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("alignment not deterministic at line %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestAlignLines_InterpolatesUnmatchedLine(t *testing.T) {
	// The middle line does not appear in the captions at all.
	lines := []entities.TranscriptLine{
		line("A", "welcome everyone to the september meeting of the board"),
		line("B", "mhm"),
		line("A", "our first order of business is the consent calendar"),
	}
	caps := captionsFor([]string{
		"welcome everyone to the september meeting of the board",
		"our first order of business is the consent calendar",
	}, 6)

	out, err := AlignLines(lines, caps, DefaultOptions())
	if err != nil {
		t.Fatalf("AlignLines failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(out))
	}
	if out[1].Start < out[0].End-1e-9 {
		t.Fatalf("interpolated line starts %v before previous line end %v", out[1].Start, out[0].End)
	}
	if out[1].End > out[2].Start+1e-9 {
		t.Fatalf("interpolated line ends %v after next line start %v", out[1].End, out[2].Start)
	}
}

func TestAlignLines_PreservesAssignedTimes(t *testing.T) {
	s, e := 100.0, 104.0
	lines := []entities.TranscriptLine{
		{Speaker: "A", Text: "this line already has its interval", Start: &s, End: &e},
	}
	caps := captionsFor([]string{"this line already has its interval"}, 4)

	out, err := AlignLines(lines, caps, DefaultOptions())
	if err != nil {
		t.Fatalf("AlignLines failed: %v", err)
	}
	if out[0].Start != 100 || out[0].End != 104 {
		t.Fatalf("pre-assigned interval was not kept: [%v, %v]", out[0].Start, out[0].End)
	}
}

func TestAlignLines_BandTooNarrow(t *testing.T) {
	// Two line tokens against a long caption stream: with radius 1 the scaled
	// diagonal jumps too far per row for any path to stay in the band.
	lines := []entities.TranscriptLine{line("A", "alpha omega")}
	longText := strings.Repeat("word ", 200) + "alpha omega"
	caps := []entities.Caption{{Start: 0, End: 120, Text: longText}}

	_, err := AlignLines(lines, caps, Options{BandRadius: 1, IndelPenalty: 1.0})
	if err == nil {
		t.Fatal("expected alignment error for too-narrow band")
	}
	var alignErr *AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("expected *AlignmentError, got %T: %v", err, err)
	}
	if alignErr.BandRadius != 1 {
		t.Fatalf("error should carry band radius, got %d", alignErr.BandRadius)
	}
}

func TestAlignLines_EmptyCaptions(t *testing.T) {
	lines := []entities.TranscriptLine{line("A", "something was said")}
	if _, err := AlignLines(lines, nil, DefaultOptions()); err == nil {
		t.Fatal("expected error for empty captions")
	}
}

func TestDissimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"board", "board", 0},
		{"", "word", 1},
		{"word", "", 1},
	}
	for _, c := range cases {
		if got := dissimilarity(c.a, c.b); got != c.want {
			t.Errorf("dissimilarity(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
	// A near-miss should cost less than a full substitution.
	if near, far := dissimilarity("budget", "budgets"), dissimilarity("budget", "zoning"); near >= far {
		t.Errorf("near-miss %v should cost less than unrelated %v", near, far)
	}
}

func TestNormalizeToken(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello,", "hello"},
		{"don't", "don't"},
		{"UM", ""},
		{"--", ""},
		{"Board.", "board"},
	}
	for _, c := range cases {
		if got := normalizeToken(c.in); got != c.want {
			t.Errorf("normalizeToken(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
