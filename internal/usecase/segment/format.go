package segment

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

const (
	MarkerStart = "=START="
	MarkerEnd   = "=END="
)

// lineRe matches a rendered transcript line once leading tabs are stripped:
// [12.34 - 56.78] Speaker Name: text.
var lineRe = regexp.MustCompile(`^\[(?P<start>[^\]-]+)\s*-\s*(?P<end>[^\]]+)\]\s*(?P<spk>[^:]+):\s*(?P<txt>.*)$`)

// FormatLine renders one transcript line in the segments-file layout. Every
// non-marker line in the document is tab indented.
func FormatLine(ln entities.AlignedLine) string {
	return fmt.Sprintf("\t[%.2f - %.2f] %s: %s", ln.Start, ln.End, ln.Speaker, ln.Text)
}

// Render writes the full marker document: every transcript line tab indented,
// with flush-left fence markers wrapping each kept run.
func (r *Result) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range r.entries {
		var line string
		switch e.kind {
		case kindStart:
			line = MarkerStart
		case kindEnd:
			line = MarkerEnd
		default:
			line = FormatLine(e.line)
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseLines reads transcript lines in the rendered layout back into memory.
// Marker and blank lines are ignored; anything else that does not parse is
// skipped with a warning so one mangled line cannot sink the document. An
// unterminated trailing run is tolerated.
func ParseLines(r io.Reader) ([]entities.AlignedLine, []Warning, error) {
	var lines []entities.AlignedLine
	var warnings []Warning

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	idx := -1
	for sc.Scan() {
		idx++
		raw := strings.TrimLeft(sc.Text(), "\t")
		if raw == "" || raw == MarkerStart || raw == MarkerEnd {
			continue
		}
		m := lineRe.FindStringSubmatch(raw)
		if m == nil {
			warnings = append(warnings, Warning{Index: idx, Reason: "unparseable line"})
			continue
		}
		start, err := parseTimestamp(strings.TrimSpace(m[1]))
		if err != nil {
			warnings = append(warnings, Warning{Index: idx, Reason: "bad start timestamp"})
			continue
		}
		end, err := parseTimestamp(strings.TrimSpace(m[2]))
		if err != nil {
			warnings = append(warnings, Warning{Index: idx, Reason: "bad end timestamp"})
			continue
		}
		lines = append(lines, entities.AlignedLine{
			Speaker: strings.TrimSpace(m[3]),
			Text:    strings.TrimSpace(m[4]),
			Start:   start,
			End:     end,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, warnings, err
	}
	return lines, warnings, nil
}

// parseTimestamp accepts plain seconds ("12.34") or clock form ("0:01:12.5").
func parseTimestamp(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q is not seconds or h:m:s", s)
	}
	h, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	m, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}
	return h*3600 + m*60 + sec, nil
}
