package align

import (
	"fmt"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

// Options configures the aligner
type Options struct {
	// BandRadius is the maximum token-index offset from the scaled diagonal.
	BandRadius int
	// IndelPenalty is the fixed cost of skipping a token in either sequence.
	IndelPenalty float64
}

// DefaultOptions returns the aligner defaults
func DefaultOptions() Options {
	return Options{
		BandRadius:   100,
		IndelPenalty: 1.0,
	}
}

type captionToken struct {
	text  string
	start float64
	end   float64
}

// captionTokens flattens captions into normalized tokens, distributing each
// caption's interval evenly across its tokens with a strictly positive step
// so token times are increasing.
func captionTokens(captions []entities.Caption) []captionToken {
	var out []captionToken
	for _, c := range captions {
		toks := tokenize(c.Text)
		if len(toks) == 0 {
			continue
		}
		step := (c.End - c.Start) / float64(len(toks))
		if step < 0.001 {
			step = 0.001
		}
		cur := c.Start
		for _, t := range toks {
			end := cur + step
			if end > c.End {
				end = c.End
			}
			if end < cur {
				end = cur
			}
			out = append(out, captionToken{text: t, start: cur, end: end})
			cur += step
		}
	}
	return out
}

// AlignLines assigns start/end timestamps to untimed transcript lines by
// matching their tokens against a timestamped caption stream with band-limited
// dynamic time warping. The result has exactly one aligned line per input
// line, with non-decreasing start times. Lines whose tokens match no caption
// token are interpolated between their resolved neighbors. Lines that already
// carry both timestamps keep them.
//
// A band too narrow to connect the sequences yields an *AlignmentError; the
// aligner never fabricates timestamps on failure.
func AlignLines(lines []entities.TranscriptLine, captions []entities.Caption, opts Options) ([]entities.AlignedLine, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	if opts.BandRadius <= 0 {
		return nil, fmt.Errorf("band radius must be positive, got %d", opts.BandRadius)
	}
	if opts.IndelPenalty <= 0 {
		return nil, fmt.Errorf("indel penalty must be positive, got %v", opts.IndelPenalty)
	}

	refToks := captionTokens(captions)
	if len(refToks) == 0 {
		return nil, fmt.Errorf("reference captions contain no usable tokens")
	}

	// Tokenize every line, remembering which token span belongs to it.
	type bound struct{ lo, hi int } // half-open token range
	bounds := make([]bound, len(lines))
	var srcToks []string
	for i, ln := range lines {
		lo := len(srcToks)
		srcToks = append(srcToks, tokenize(ln.Text)...)
		bounds[i] = bound{lo: lo, hi: len(srcToks)}
	}

	path, err := bandedDTW(srcToks, tokenText(refToks), opts.BandRadius, opts.IndelPenalty)
	if err != nil {
		return nil, err
	}

	// Per-token match times.
	tokStart := make(map[int]float64, len(path))
	tokEnd := make(map[int]float64, len(path))
	for _, st := range path {
		tokStart[st.LineToken] = refToks[st.CaptionToken].start
		tokEnd[st.LineToken] = refToks[st.CaptionToken].end
	}

	out := make([]entities.AlignedLine, len(lines))
	resolved := make([]bool, len(lines))
	for i, ln := range lines {
		out[i] = entities.AlignedLine{Speaker: ln.Speaker, Text: ln.Text}
		if ln.Start != nil && ln.End != nil {
			out[i].Start, out[i].End = *ln.Start, *ln.End
			resolved[i] = true
			continue
		}
		first, last, found := matchedSpan(bounds[i].lo, bounds[i].hi, tokStart)
		if !found {
			continue
		}
		out[i].Start = tokStart[first]
		out[i].End = tokEnd[last]
		resolved[i] = true
	}

	interpolate(out, resolved, refToks[0].start, refToks[len(refToks)-1].end)
	enforceMonotonic(out)
	return out, nil
}

func tokenText(toks []captionToken) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.text
	}
	return out
}

// matchedSpan returns the first and last matched token indices in [lo, hi).
func matchedSpan(lo, hi int, tokStart map[int]float64) (first, last int, found bool) {
	for t := lo; t < hi; t++ {
		if _, ok := tokStart[t]; !ok {
			continue
		}
		if !found {
			first = t
			found = true
		}
		last = t
	}
	return first, last, found
}

// interpolate assigns intervals to unresolved lines by spreading them linearly
// between the end of the previous resolved line and the start of the next one.
// Runs at the edges borrow the caption stream's boundaries.
func interpolate(out []entities.AlignedLine, resolved []bool, streamStart, streamEnd float64) {
	n := len(out)
	i := 0
	for i < n {
		if resolved[i] {
			i++
			continue
		}
		runStart := i
		for i < n && !resolved[i] {
			i++
		}
		runEnd := i // exclusive

		lo := streamStart
		if runStart > 0 {
			lo = out[runStart-1].End
		}
		hi := streamEnd
		if runEnd < n {
			hi = out[runEnd].Start
		}
		if hi < lo {
			hi = lo
		}

		count := runEnd - runStart
		width := (hi - lo) / float64(count)
		for k := 0; k < count; k++ {
			out[runStart+k].Start = lo + float64(k)*width
			out[runStart+k].End = lo + float64(k+1)*width
		}
	}
}

// enforceMonotonic clamps start times to be non-decreasing and keeps each
// line's end at or after its start.
func enforceMonotonic(out []entities.AlignedLine) {
	for i := range out {
		if i > 0 && out[i].Start < out[i-1].Start {
			out[i].Start = out[i-1].Start
		}
		if out[i].End < out[i].Start {
			out[i].End = out[i].Start
		}
	}
}
