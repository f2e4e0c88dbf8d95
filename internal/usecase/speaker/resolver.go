package speaker

import (
	"regexp"
	"strings"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

// Evidence strengths for name bindings. Roll-call bindings outrank
// recognition cues; the earliest binding for an id stays primary either way.
const (
	ConfidenceRollCall = 0.9
	ConfidenceCue      = 0.6
)

var (
	// Call-to-order / roll-call announcement.
	rollCallRe = regexp.MustCompile(`(?i)roll\s?call|call(?:ing)?(?:\s+the)?\s+roll|take(?:\s+the)?\s+roll`)
	// Secondary chair evidence that can appear later in the meeting.
	motionRe      = regexp.MustCompile(`(?i)(?:do|can|may)\s+i\s+have\s+a\s+motion|entertain\s+a\s+motion`)
	movingOnRe    = regexp.MustCompile(`(?i)moving on`)
	chairReportRe = regexp.MustCompile(`(?i)chair['’]?s report`)
	anyOtherRe    = regexp.MustCompile(`(?i)any other (?:directors? )?comments|any other matters`)
	// Board titles followed by a name. Staff titles are deliberately absent.
	titledNameRe = regexp.MustCompile(`(?i)(?:director|secretary|treasurer|chair(?:man)?|vice chair)\s+(?P<name>[A-Za-z]+(?: [A-Za-z]+)*)`)
	// Short affirmative roll-call response.
	presentRe = regexp.MustCompile(`(?i)\b(present|here)\b`)
	// Recognition cue granting the floor.
	recognizedRe = regexp.MustCompile(`(?i)you('| a)?re recognized`)
)

type chairHeuristic struct {
	re     *regexp.Regexp
	weight int
}

var chairHeuristics = []chairHeuristic{
	{rollCallRe, 5},
	{motionRe, 3},
	{movingOnRe, 1},
	{chairReportRe, 2},
	{anyOtherRe, 1},
}

// Resolution is the outcome of resolving diarized speaker ids to names.
type Resolution struct {
	Speakers entities.SpeakerMap `json:"speakers"`
	ChairID  string              `json:"chair_id,omitempty"`
}

// Resolve builds a speaker map and identifies the chair from an ordered,
// diarized transcript. Resolution is best effort: ids without roll-call or
// cue evidence stay unresolved and no error is raised for missing roll calls.
// Re-applying Resolve to an already-resolved transcript produces no change.
func Resolve(utterances []entities.AlignedLine) *Resolution {
	res := &Resolution{Speakers: make(entities.SpeakerMap)}
	if len(utterances) == 0 {
		return res
	}

	res.ChairID = detectChair(utterances)
	rollStart, rollEnd := rollCallRegion(utterances)
	bindRollCall(utterances, rollStart, rollEnd, res)
	bindRecognitionCues(utterances, rollStart, rollEnd, res)
	return res
}

// Apply replaces diarized speaker ids with their resolved primary names.
// Unresolved ids pass through unchanged. The input is not mutated.
func Apply(lines []entities.AlignedLine, res *Resolution) []entities.AlignedLine {
	out := make([]entities.AlignedLine, len(lines))
	for i, ln := range lines {
		out[i] = ln
		out[i].Speaker = res.Speakers.NameFor(ln.Speaker)
	}
	return out
}

// ChairName returns the resolved name of the chair, or its raw id when
// unresolved, or "" when no chair was detected.
func (r *Resolution) ChairName() string {
	if r.ChairID == "" {
		return ""
	}
	return r.Speakers.NameFor(r.ChairID)
}

// detectChair returns the diarized id acting as chair. The first utterance
// announcing the roll call wins outright; otherwise weighted phrase scoring,
// then a name/affirmative pair as a last resort.
func detectChair(utterances []entities.AlignedLine) string {
	for _, u := range utterances {
		if rollCallRe.MatchString(u.Text) {
			return u.Speaker
		}
	}

	scores := make(map[string]int)
	for _, u := range utterances {
		for _, h := range chairHeuristics {
			if h.re.MatchString(u.Text) {
				scores[u.Speaker] += h.weight
			}
		}
	}
	if len(scores) > 0 {
		best, bestScore := "", -1
		for _, u := range utterances {
			// iterate in transcript order so equal scores resolve to the
			// earliest speaker, deterministically
			if s, ok := scores[u.Speaker]; ok && s > bestScore {
				best, bestScore = u.Speaker, s
			}
		}
		return best
	}

	for i, u := range utterances {
		if !titledNameRe.MatchString(u.Text) {
			continue
		}
		j := nextOtherSpeaker(utterances, i)
		if j >= 0 && isShortAffirmative(utterances[j]) {
			return u.Speaker
		}
	}
	return ""
}

// rollCallRegion locates the attendance exchange: it opens right after the
// first roll-call announcement and extends while lines are plain name
// announcements or short affirmative responses. A recognition cue or any
// other material ends it. Returns start == end == -1 when there is none.
func rollCallRegion(utterances []entities.AlignedLine) (int, int) {
	start := -1
	for i, u := range utterances {
		if rollCallRe.MatchString(u.Text) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return -1, -1
	}
	end := start
	for end < len(utterances) {
		u := utterances[end]
		if recognizedRe.MatchString(u.Text) {
			break
		}
		if !isNameAnnouncement(u) && !isShortAffirmative(u) {
			break
		}
		end++
	}
	return start, end
}

// bindRollCall pairs each announced name in the attendance exchange with the
// diarized id of the immediately following short affirmative response.
func bindRollCall(utterances []entities.AlignedLine, start, end int, res *Resolution) {
	if start < 0 {
		return
	}
	i := start
	for i < end {
		name := announcedName(utterances[i].Text)
		if name == "" {
			i++
			continue
		}
		j := nextOtherSpeaker(utterances, i)
		if j < 0 {
			break
		}
		if j < end && isShortAffirmative(utterances[j]) {
			bind(res.Speakers, utterances[j].Speaker, name, ConfidenceRollCall)
		}
		i = j
	}
}

// bindRecognitionCues binds direct-address patterns outside the roll call:
// a line granting recognition, or a line ending in a titled name, binds the
// next distinct speaker to that name.
func bindRecognitionCues(utterances []entities.AlignedLine, rollStart, rollEnd int, res *Resolution) {
	for i, u := range utterances {
		if rollStart >= 0 && i >= rollStart && i < rollEnd {
			continue
		}
		name := announcedName(u.Text)
		if name == "" {
			continue
		}
		if !recognizedRe.MatchString(u.Text) && !endsWithTitledName(u.Text) {
			continue
		}
		j := nextOtherSpeaker(utterances, i)
		if j < 0 {
			continue
		}
		bind(res.Speakers, utterances[j].Speaker, name, ConfidenceCue)
	}
}

// bind records a name for an id. The first binding becomes the primary and is
// never silently overwritten; disagreeing evidence is kept as an alternate.
func bind(m entities.SpeakerMap, id, name string, confidence float64) {
	ident, ok := m[id]
	if !ok {
		m[id] = entities.SpeakerIdentity{PrimaryName: name, Confidence: confidence}
		return
	}
	if ident.PrimaryName == name {
		if confidence > ident.Confidence {
			ident.Confidence = confidence
			m[id] = ident
		}
		return
	}
	if !m.HasAlternate(id, name) {
		ident.Alternates = append(ident.Alternates, name)
		m[id] = ident
	}
}

// announcedName extracts the first titled name in the text, title-cased.
func announcedName(text string) string {
	m := titledNameRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return titleCase(m[len(m)-1])
}

// endsWithTitledName reports whether the line's trailing words are a titled
// name, as in "we'll now hear from Director Lee."
func endsWithTitledName(text string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(text), ".,!?;:")
	loc := titledNameRe.FindStringIndex(trimmed)
	return loc != nil && loc[1] == len(trimmed)
}

// isNameAnnouncement reports whether an utterance is a bare roll-call name
// announcement such as "Director Doe.". Longer lines that merely contain a
// titled name, like "We will now hear from Director Park.", do not extend the
// attendance region.
func isNameAnnouncement(u entities.AlignedLine) bool {
	return u.Words() <= 4 && announcedName(u.Text) != ""
}

// isShortAffirmative reports whether an utterance is a brief roll-call
// confirmation such as "present" or "here, thank you".
func isShortAffirmative(u entities.AlignedLine) bool {
	return u.Words() <= 4 && presentRe.MatchString(u.Text)
}

// nextOtherSpeaker returns the index of the first utterance after i spoken by
// someone other than utterances[i].Speaker, or -1.
func nextOtherSpeaker(utterances []entities.AlignedLine, i int) int {
	for j := i + 1; j < len(utterances); j++ {
		if utterances[j].Speaker != utterances[i].Speaker {
			return j
		}
	}
	return -1
}

func titleCase(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
