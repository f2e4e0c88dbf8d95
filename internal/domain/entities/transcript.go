package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Caption is one externally supplied, already-timestamped unit of reference
// speech. Captions are contiguous, non-overlapping and ordered by start time.
type Caption struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptLine is one utterance of an untimed or diarized transcript.
// Speaker holds either a resolved name or an opaque diarized id such as
// "SPEAKER_03". Start/End are nil until a stage assigns them.
type TranscriptLine struct {
	Speaker string   `json:"speaker"`
	Text    string   `json:"text"`
	Start   *float64 `json:"start,omitempty"`
	End     *float64 `json:"end,omitempty"`
}

// AlignedLine is a TranscriptLine with an assigned time interval. For any
// ordered sequence of aligned lines start times are non-decreasing; ties are
// permitted for filler lines that had no independent caption match.
type AlignedLine struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Words returns the whitespace-separated word count of the line text.
func (l AlignedLine) Words() int {
	n := 0
	inWord := false
	for _, r := range l.Text {
		if r == ' ' || r == '\t' || r == '\n' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

// Transcript is the stored diarized transcript for a highlight job
type Transcript struct {
	ID           uuid.UUID                                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID        uuid.UUID                                  `json:"job_id" gorm:"type:uuid;not null;index"`
	Language     string                                     `json:"language,omitempty" gorm:"type:varchar(20)"`
	Utterances   []AlignedLine                              `json:"utterances,omitempty" gorm:"type:jsonb;serializer:json"`
	SpeakerCount int                                        `json:"speaker_count,omitempty"`
	AudioSeconds int                                        `json:"audio_seconds,omitempty"`
	ModelUsed    string                                     `json:"model_used,omitempty" gorm:"type:varchar(100)"`
	RawData      datatypes.JSONType[map[string]interface{}] `json:"raw_data,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt    time.Time                                  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time                                  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript creates a new transcript for a job
func NewTranscript(jobID uuid.UUID) *Transcript {
	return &Transcript{
		ID:        uuid.New(),
		JobID:     jobID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
