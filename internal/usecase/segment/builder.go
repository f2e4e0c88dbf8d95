package segment

import (
	"fmt"
	"math"
	"strings"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

type entryKind int

const (
	kindLine entryKind = iota
	kindStart
	kindEnd
)

// entry is one row of the rendered segments document: a transcript line or a
// flush-left fence marker.
type entry struct {
	kind entryKind
	line entities.AlignedLine
}

// Warning records a transcript line the builder had to skip.
type Warning struct {
	Index  int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d skipped: %s", w.Index, w.Reason)
}

// Result holds the extracted segments, any per-line warnings, and the full
// marker document the segments were carved from.
type Result struct {
	Segments []entities.Segment
	Warnings []Warning

	entries []entry
}

// Builder walks a timestamped, speaker-resolved transcript once and extracts
// the target speaker's highlight segments under the configured policy.
type Builder struct {
	policy Policy
}

func NewBuilder(policy Policy) *Builder {
	return &Builder{policy: policy.withDefaults()}
}

// Build runs the state machine over the transcript. Lines it cannot use are
// skipped with a warning; a single bad line never discards the rest of the
// meeting. Segments come out in transcript order and never overlap.
func (b *Builder) Build(lines []entities.AlignedLine) *Result {
	res := &Result{}
	glueSec := b.policy.GlueWindow.Seconds()

	open := false
	lastEnd := math.Inf(-1)
	lastIdx := -(b.policy.GlueLines + 1)
	lastEndMarker := -1 // index into res.entries, -1 when no closed segment trails

	for i := range lines {
		ln := lines[i]
		if reason := checkLine(ln); reason != "" {
			res.Warnings = append(res.Warnings, Warning{Index: i, Reason: reason})
			continue
		}

		// A chair hand-off ends the segment just before the chair's line.
		// The hand-off line itself belongs to whatever comes next.
		if open && ln.Speaker == b.policy.ChairName {
			var next *entities.AlignedLine
			if i+1 < len(lines) {
				next = &lines[i+1]
			}
			if b.policy.Handoff.ShouldClose(ln, next) {
				res.entries = append(res.entries, entry{kind: kindEnd})
				lastEndMarker = len(res.entries) - 1
				open = false
			}
		}

		substantive := ln.Speaker == b.policy.TargetSpeaker && ln.Words() >= b.policy.MinOpenWords
		if substantive && !open {
			if lastEndMarker >= 0 && (ln.Start-lastEnd <= glueSec || i-lastIdx <= b.policy.GlueLines) {
				// Reopen the previous segment: drop its end fence so the
				// intervening lines stay inside the merged run.
				res.entries = append(res.entries[:lastEndMarker], res.entries[lastEndMarker+1:]...)
			} else {
				res.entries = append(res.entries, entry{kind: kindStart})
			}
			open = true
			lastEndMarker = -1
		}

		res.entries = append(res.entries, entry{kind: kindLine, line: ln})

		if ln.Speaker == b.policy.TargetSpeaker && (open || substantive) {
			lastEnd = ln.End
			lastIdx = i
		}
	}

	if open {
		res.entries = append(res.entries, entry{kind: kindEnd})
	}

	res.Segments = b.collect(res.entries)
	return res
}

// collect turns fenced runs of the document into Segment values. A freshly
// opened segment may borrow a little pre-context before its first line, but
// never past the previous segment's end or before zero.
func (b *Builder) collect(entries []entry) []entities.Segment {
	var segs []entities.Segment
	pre := b.policy.PreContext.Seconds()
	prevEnd := 0.0
	var cur []entities.AlignedLine
	inRun := false

	for _, e := range entries {
		switch e.kind {
		case kindStart:
			inRun = true
			cur = nil
		case kindEnd:
			if inRun && len(cur) > 0 {
				start := cur[0].Start - pre
				if start < prevEnd {
					start = prevEnd
				}
				if start < 0 {
					start = 0
				}
				seg := entities.Segment{
					Start: start,
					End:   cur[len(cur)-1].End,
					Lines: cur,
				}
				segs = append(segs, seg)
				prevEnd = seg.End
			}
			inRun = false
			cur = nil
		case kindLine:
			if inRun {
				cur = append(cur, e.line)
			}
		}
	}
	return segs
}

func checkLine(ln entities.AlignedLine) string {
	if strings.TrimSpace(ln.Speaker) == "" {
		return "missing speaker"
	}
	if ln.End < ln.Start {
		return fmt.Sprintf("end %.2f before start %.2f", ln.End, ln.Start)
	}
	return ""
}
