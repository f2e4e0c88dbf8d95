package entities

import (
	"time"

	"github.com/google/uuid"
)

// HighlightJobStatus represents the status of a highlight extraction job
type HighlightJobStatus string

const (
	HighlightJobStatusPending    HighlightJobStatus = "pending"    // Waiting to be submitted for transcription
	HighlightJobStatusSubmitted  HighlightJobStatus = "submitted"  // Submitted to AssemblyAI, waiting for transcript
	HighlightJobStatusProcessing HighlightJobStatus = "processing" // Pipeline running over the transcript
	HighlightJobStatusCompleted  HighlightJobStatus = "completed"  // Segment set stored
	HighlightJobStatusFailed     HighlightJobStatus = "failed"     // Processing failed
	HighlightJobStatusRetrying   HighlightJobStatus = "retrying"   // Retrying after failure
)

// SegmentPolicy holds the per-job segmentation knobs. Zero values fall back
// to the configured pipeline defaults.
type SegmentPolicy struct {
	MinOpenWords int     `json:"min_open_words,omitempty"`
	GlueSeconds  float64 `json:"glue_seconds,omitempty"`
	GlueLines    int     `json:"glue_lines,omitempty"`
	PreSeconds   float64 `json:"pre_seconds,omitempty"`
	HandoffRule  string  `json:"handoff_rule,omitempty"`
}

// HighlightJobMetadata stores additional metadata for highlight jobs
type HighlightJobMetadata struct {
	DurationSeconds  int    `json:"duration_seconds,omitempty"`
	Language         string `json:"language,omitempty"`
	SpeakerCount     int    `json:"speaker_count,omitempty"`
	SegmentCount     int    `json:"segment_count,omitempty"`
	SkippedLineCount int    `json:"skipped_line_count,omitempty"`
	WebhookAttempts  int    `json:"webhook_attempts,omitempty"`
}

// HighlightJob represents one highlight extraction job for a meeting recording
type HighlightJob struct {
	ID            uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Status        HighlightJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	TargetSpeaker string             `json:"target_speaker" gorm:"type:varchar(255);not null"`
	RecordingURL  string             `json:"recording_url,omitempty" gorm:"type:text"`
	ExternalJobID *string            `json:"external_job_id,omitempty" gorm:"type:varchar(255);index"` // AssemblyAI transcript ID
	TranscriptID  *uuid.UUID         `json:"transcript_id,omitempty" gorm:"type:uuid;index"`
	SegmentSetID  *uuid.UUID         `json:"segment_set_id,omitempty" gorm:"type:uuid;index"`
	Policy        SegmentPolicy      `json:"policy,omitempty" gorm:"type:jsonb;serializer:json"`

	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`

	Metadata HighlightJobMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (HighlightJob) TableName() string {
	return "highlight_jobs"
}

// NewHighlightJob creates a new highlight job
func NewHighlightJob(targetSpeaker, recordingURL string, policy SegmentPolicy) *HighlightJob {
	return &HighlightJob{
		ID:            uuid.New(),
		Status:        HighlightJobStatusPending,
		TargetSpeaker: targetSpeaker,
		RecordingURL:  recordingURL,
		Policy:        policy,
		RetryCount:    0,
		MaxRetries:    3,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

// IsRetryable checks if job can be retried
func (j *HighlightJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries && j.Status == HighlightJobStatusFailed
}

// MarkAsSubmitted marks job as submitted to the transcription service
func (j *HighlightJob) MarkAsSubmitted(externalJobID string) {
	j.Status = HighlightJobStatusSubmitted
	j.ExternalJobID = &externalJobID
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsProcessing marks job as being processed by the pipeline
func (j *HighlightJob) MarkAsProcessing() {
	j.Status = HighlightJobStatusProcessing
	j.UpdatedAt = time.Now()
}

// MarkAsCompleted marks job as completed with its stored segment set
func (j *HighlightJob) MarkAsCompleted(segmentSetID *uuid.UUID) {
	j.Status = HighlightJobStatusCompleted
	j.SegmentSetID = segmentSetID
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks job as failed with error message
func (j *HighlightJob) MarkAsFailed(errMsg string) {
	j.Status = HighlightJobStatusFailed
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// IncrementRetry increments retry count and marks for retry
func (j *HighlightJob) IncrementRetry(errMsg string) {
	j.RetryCount++
	j.Status = HighlightJobStatusRetrying
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}
