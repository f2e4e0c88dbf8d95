package ai

import (
	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

// AlignedLines converts AssemblyAI utterances into timestamped transcript
// lines. Speaker holds the provider's diarized label ("A", "B", ...) until
// the resolver maps it to a name. Times come back in milliseconds.
func AlignedLines(t *aai.Transcript) []entities.AlignedLine {
	if t == nil || len(t.Utterances) == 0 {
		return nil
	}
	lines := make([]entities.AlignedLine, 0, len(t.Utterances))
	for _, utt := range t.Utterances {
		line := entities.AlignedLine{}
		if utt.Text != nil {
			line.Text = *utt.Text
		}
		if utt.Speaker != nil {
			line.Speaker = *utt.Speaker
		}
		if utt.Start != nil {
			line.Start = float64(*utt.Start) / 1000.0
		}
		if utt.End != nil {
			line.End = float64(*utt.End) / 1000.0
		}
		lines = append(lines, line)
	}
	return lines
}

// SpeakerCount returns the number of distinct diarized speakers
func SpeakerCount(t *aai.Transcript) int {
	if t == nil {
		return 0
	}
	seen := map[string]struct{}{}
	for _, utt := range t.Utterances {
		if utt.Speaker != nil {
			seen[*utt.Speaker] = struct{}{}
		}
	}
	return len(seen)
}

// AudioSeconds returns the audio duration in whole seconds
func AudioSeconds(t *aai.Transcript) int {
	if t == nil || t.AudioDuration == nil {
		return 0
	}
	return int(*t.AudioDuration)
}

// Language returns the detected or requested language code
func Language(t *aai.Transcript) string {
	if t == nil {
		return ""
	}
	return string(t.LanguageCode)
}
