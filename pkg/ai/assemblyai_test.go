package ai

import (
	"testing"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
)

func strp(s string) *string   { return &s }
func i64p(v int64) *int64     { return &v }
func f64p(v float64) *float64 { return &v }

func TestAlignedLines_ConvertsMillisecondsAndSpeakers(t *testing.T) {
	transcript := &aai.Transcript{
		Utterances: []aai.TranscriptUtterance{
			{Text: strp("Good morning everyone."), Speaker: strp("A"), Start: i64p(1500), End: i64p(3250)},
			{Text: strp("Morning."), Speaker: strp("B"), Start: i64p(3250), End: i64p(4000)},
		},
	}

	lines := AlignedLines(transcript)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Speaker != "A" || lines[0].Start != 1.5 || lines[0].End != 3.25 {
		t.Errorf("first line converted wrong: %+v", lines[0])
	}
	if lines[1].Text != "Morning." {
		t.Errorf("second line text = %q", lines[1].Text)
	}

	if got := SpeakerCount(transcript); got != 2 {
		t.Errorf("SpeakerCount = %d, want 2", got)
	}
}

func TestAlignedLines_NilTranscript(t *testing.T) {
	if got := AlignedLines(nil); got != nil {
		t.Errorf("expected nil for nil transcript, got %+v", got)
	}
	if got := AudioSeconds(nil); got != 0 {
		t.Errorf("AudioSeconds(nil) = %d", got)
	}
}

func TestAudioSeconds(t *testing.T) {
	transcript := &aai.Transcript{AudioDuration: f64p(123.9)}
	if got := AudioSeconds(transcript); got != 123 {
		t.Errorf("AudioSeconds = %d, want 123", got)
	}
}
