package segment

import "time"

const (
	// DefaultMinOpenWords is the minimum word count a target-speaker line
	// needs before it opens a new segment. Short acknowledgements stay out.
	DefaultMinOpenWords = 10

	// DefaultGlueWindow is the elapsed-time threshold under which a new
	// qualifying line reopens the previous segment instead of starting one.
	DefaultGlueWindow = 30 * time.Second

	// DefaultGlueLines is the transcript-line threshold for the same rule.
	DefaultGlueLines = 5
)

// Policy controls how highlight segments are carved out of a transcript.
// The zero value is not usable on its own; Builder applies defaults for
// any threshold left at zero.
type Policy struct {
	// TargetSpeaker is the resolved display name whose remarks are kept.
	TargetSpeaker string

	// ChairName is the resolved display name of the meeting chair. Hand-off
	// closure only considers lines spoken by the chair.
	ChairName string

	// MinOpenWords is the minimum word count for a line to open a segment.
	MinOpenWords int

	// GlueWindow merges a new segment into the previous one when the gap
	// between them is at most this long.
	GlueWindow time.Duration

	// GlueLines merges a new segment into the previous one when at most
	// this many transcript lines separate them.
	GlueLines int

	// PreContext extends a freshly opened segment's start time backwards
	// to include a little lead-in. It never reaches into the previous
	// segment or before zero.
	PreContext time.Duration

	// Handoff decides when a chair line closes the open segment.
	// Defaults to NextSpeakerHandoff.
	Handoff HandoffRule
}

// DefaultPolicy returns a policy with the stock thresholds for the given
// target speaker and chair.
func DefaultPolicy(target, chair string) Policy {
	return Policy{
		TargetSpeaker: target,
		ChairName:     chair,
		MinOpenWords:  DefaultMinOpenWords,
		GlueWindow:    DefaultGlueWindow,
		GlueLines:     DefaultGlueLines,
		Handoff:       NextSpeakerHandoff{},
	}
}

func (p Policy) withDefaults() Policy {
	if p.MinOpenWords <= 0 {
		p.MinOpenWords = DefaultMinOpenWords
	}
	if p.GlueWindow <= 0 {
		p.GlueWindow = DefaultGlueWindow
	}
	if p.GlueLines <= 0 {
		p.GlueLines = DefaultGlueLines
	}
	if p.Handoff == nil {
		p.Handoff = NextSpeakerHandoff{}
	}
	return p
}
