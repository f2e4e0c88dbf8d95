package entities

import (
	"time"

	"github.com/google/uuid"
)

// Segment is one contiguous highlight for a target speaker. Segments are
// produced in non-decreasing start order, never overlap, and always carry both
// a start and an end; closed segments are immutable.
type Segment struct {
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Lines []AlignedLine `json:"lines"`
}

// Duration returns the segment length in seconds
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// SegmentSet is the stored output of one highlight job: the ordered segments,
// the speaker map snapshot they were built with, and the object key of the
// rendered segments file in storage.
type SegmentSet struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID         uuid.UUID  `json:"job_id" gorm:"type:uuid;not null;index"`
	TargetSpeaker string     `json:"target_speaker" gorm:"type:varchar(255);not null"`
	ChairID       string     `json:"chair_id,omitempty" gorm:"type:varchar(255)"`
	Speakers      SpeakerMap `json:"speakers,omitempty" gorm:"type:jsonb;serializer:json"`
	Segments      []Segment  `json:"segments" gorm:"type:jsonb;serializer:json"`
	ObjectKey     string     `json:"object_key,omitempty" gorm:"type:varchar(512)"`
	LineCount     int        `json:"line_count"`
	WarningCount  int        `json:"warning_count"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SegmentSet) TableName() string {
	return "segment_sets"
}

// NewSegmentSet creates a new segment set for a job
func NewSegmentSet(jobID uuid.UUID, targetSpeaker string) *SegmentSet {
	return &SegmentSet{
		ID:            uuid.New(),
		JobID:         jobID,
		TargetSpeaker: targetSpeaker,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}
