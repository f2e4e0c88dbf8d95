package segment

import (
	"regexp"
	"strings"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

// handoffNameRe matches a board title followed by a capitalized name. Only
// board titles count: the chair calling on a staff member or a member of the
// public is not a hand-off.
var handoffNameRe = regexp.MustCompile(`(?:(?i:director|secretary|treasurer|vice chair|chair(?:man)?))\s+(?P<name>[A-Z][a-z]+(?: [A-Z][a-z]+)*)`)

// HandoffRule decides whether a chair line passes the floor to another
// participant, which closes the open segment just before that line.
type HandoffRule interface {
	Name() string

	// ShouldClose inspects the chair's line and the line that follows it.
	// next is nil when the chair's line is the last in the transcript.
	ShouldClose(chair entities.AlignedLine, next *entities.AlignedLine) bool
}

// NextSpeakerHandoff closes a segment only when the chair names a titled
// participant and that participant speaks the very next line. Mentioning a
// director in passing does not close anything.
type NextSpeakerHandoff struct{}

func (NextSpeakerHandoff) Name() string { return "next-speaker" }

func (NextSpeakerHandoff) ShouldClose(chair entities.AlignedLine, next *entities.AlignedLine) bool {
	name := handoffName(chair.Text)
	if name == "" || next == nil {
		return false
	}
	return speakerMatches(next.Speaker, name)
}

// TitledHandoff closes a segment on any chair line that names a titled
// participant, regardless of who speaks next. It is the blunter rule, useful
// for meetings where diarization of the next speaker is unreliable.
type TitledHandoff struct{}

func (TitledHandoff) Name() string { return "titled" }

func (TitledHandoff) ShouldClose(chair entities.AlignedLine, _ *entities.AlignedLine) bool {
	return handoffName(chair.Text) != ""
}

// RuleFor maps a configured rule name to its implementation. Unknown names
// fall back to NextSpeakerHandoff.
func RuleFor(name string) HandoffRule {
	switch name {
	case TitledHandoff{}.Name():
		return TitledHandoff{}
	default:
		return NextSpeakerHandoff{}
	}
}

// handoffName extracts the first titled name from a chair line, or "" when
// the line names nobody with a board title.
func handoffName(text string) string {
	m := handoffNameRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[len(m)-1])
}

// speakerMatches reports whether a resolved speaker label refers to the named
// participant. A full match or a shared surname both count, so "Lee" matches
// "Jordan Lee".
func speakerMatches(speaker, name string) bool {
	speaker = strings.ToLower(strings.TrimSpace(speaker))
	name = strings.ToLower(strings.TrimSpace(name))
	if speaker == "" || name == "" {
		return false
	}
	if speaker == name {
		return true
	}
	sparts := strings.Fields(speaker)
	nparts := strings.Fields(name)
	return sparts[len(sparts)-1] == nparts[len(nparts)-1]
}
