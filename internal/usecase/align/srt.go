package align

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

// ParseSRT reads a SubRip caption stream into ordered captions. Cue numbers
// are ignored; multi-line cue text is joined with single spaces. Cues with
// empty text are dropped.
func ParseSRT(r io.Reader) ([]entities.Caption, error) {
	var captions []entities.Caption
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		inCue     bool
		start     float64
		end       float64
		textParts []string
	)
	flush := func() {
		if inCue {
			text := strings.TrimSpace(strings.Join(textParts, " "))
			if text != "" {
				captions = append(captions, entities.Caption{Start: start, End: end, Text: text})
			}
		}
		inCue = false
		textParts = textParts[:0]
	}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			flush()
			continue
		}
		if strings.Contains(line, "-->") {
			// a timing line always starts a new cue, even without a
			// blank separator before it
			flush()
			parts := strings.SplitN(line, "-->", 2)
			s, err := parseSRTTime(strings.TrimSpace(parts[0]))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			e, err := parseSRTTime(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			inCue, start, end = true, s, e
			continue
		}
		if !inCue {
			// cue number line
			continue
		}
		textParts = append(textParts, line)
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return captions, nil
}

// parseSRTTime parses "hh:mm:ss,mmm" (a dot separator is tolerated).
func parseSRTTime(ts string) (float64, error) {
	ts = strings.Replace(ts, ".", ",", 1)
	main, msPart, hasMS := strings.Cut(ts, ",")
	fields := strings.Split(main, ":")
	if len(fields) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}
	h, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}
	m, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}
	s, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}
	ms := 0
	if hasMS {
		ms, err = strconv.Atoi(msPart)
		if err != nil {
			return 0, fmt.Errorf("bad timestamp %q", ts)
		}
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}
