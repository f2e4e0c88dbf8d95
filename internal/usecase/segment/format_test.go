package segment

import (
	"strings"
	"testing"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

func TestRenderAndParseRoundTrip(t *testing.T) {
	lines := []entities.AlignedLine{
		mk(chair, "Calling the meeting to order.", 0, 3),
		mk(target, tenWords, 3, 9),
		mk(chair, "Director Lee, you have the floor.", 9, 11),
		mk("Jordan Lee", "Thank you, just a quick update from operations.", 11, 16),
	}
	res := NewBuilder(testPolicy()).Build(lines)

	var sb strings.Builder
	if err := res.Render(&sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	doc := sb.String()

	for _, row := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		if row == MarkerStart || row == MarkerEnd {
			continue
		}
		if !strings.HasPrefix(row, "\t") {
			t.Errorf("transcript line not tab indented: %q", row)
		}
	}

	parsed, warnings, err := ParseLines(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if len(parsed) != len(lines) {
		t.Fatalf("parsed %d lines, want %d", len(parsed), len(lines))
	}
	for i := range lines {
		if parsed[i].Speaker != lines[i].Speaker || parsed[i].Text != lines[i].Text {
			t.Errorf("line %d round-tripped as %+v", i, parsed[i])
		}
		if parsed[i].Start != lines[i].Start || parsed[i].End != lines[i].End {
			t.Errorf("line %d times round-tripped as [%.2f, %.2f]", i, parsed[i].Start, parsed[i].End)
		}
	}
}

func TestParseLines_SkipsMangledLineWithWarning(t *testing.T) {
	doc := strings.Join([]string{
		MarkerStart,
		"\t[0.00 - 3.00] " + chair + ": Calling the meeting to order.",
		"\tthis row lost its timestamps somehow",
		"\t[oops - 9.00] " + target + ": bad start",
		MarkerEnd,
	}, "\n")

	parsed, warnings, err := ParseLines(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d lines, want 1", len(parsed))
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", warnings)
	}
}

func TestParseTimestamp_ClockForm(t *testing.T) {
	got, err := parseTimestamp("0:01:12.5")
	if err != nil {
		t.Fatalf("parseTimestamp: %v", err)
	}
	if got != 72.5 {
		t.Errorf("parseTimestamp = %.2f, want 72.5", got)
	}
	if _, err := parseTimestamp("not-a-time"); err == nil {
		t.Error("expected error for garbage timestamp")
	}
}
