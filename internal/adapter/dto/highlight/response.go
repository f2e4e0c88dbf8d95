package highlight

import (
	"time"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

// JobResponse represents a highlight job in responses
type JobResponse struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	TargetSpeaker string     `json:"target_speaker"`
	RecordingURL  string     `json:"recording_url,omitempty"`
	SegmentSetID  *string    `json:"segment_set_id,omitempty"`
	SegmentCount  int        `json:"segment_count,omitempty"`
	RetryCount    int        `json:"retry_count"`
	LastError     *string    `json:"last_error,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SegmentResponse is one highlight segment in responses
type SegmentResponse struct {
	Start    float64        `json:"start"`
	End      float64        `json:"end"`
	Duration float64        `json:"duration"`
	Lines    []LineResponse `json:"lines"`
}

// LineResponse is one timestamped transcript line in responses
type LineResponse struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// SegmentSetResponse represents the stored output of a completed job
type SegmentSetResponse struct {
	ID            string              `json:"id"`
	JobID         string              `json:"job_id"`
	TargetSpeaker string              `json:"target_speaker"`
	Chair         string              `json:"chair,omitempty"`
	Speakers      entities.SpeakerMap `json:"speakers,omitempty"`
	Segments      []SegmentResponse   `json:"segments"`
	LineCount     int                 `json:"line_count"`
	WarningCount  int                 `json:"warning_count"`
	CreatedAt     time.Time           `json:"created_at"`
}

// FromJob maps a job entity to its response shape
func FromJob(job *entities.HighlightJob) *JobResponse {
	if job == nil {
		return nil
	}
	resp := &JobResponse{
		ID:            job.ID.String(),
		Status:        string(job.Status),
		TargetSpeaker: job.TargetSpeaker,
		RecordingURL:  job.RecordingURL,
		SegmentCount:  job.Metadata.SegmentCount,
		RetryCount:    job.RetryCount,
		LastError:     job.LastError,
		StartedAt:     job.StartedAt,
		CompletedAt:   job.CompletedAt,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
	if job.SegmentSetID != nil {
		id := job.SegmentSetID.String()
		resp.SegmentSetID = &id
	}
	return resp
}

// FromSegmentSet maps a segment set entity to its response shape
func FromSegmentSet(set *entities.SegmentSet) *SegmentSetResponse {
	if set == nil {
		return nil
	}
	segments := make([]SegmentResponse, 0, len(set.Segments))
	for _, seg := range set.Segments {
		lines := make([]LineResponse, 0, len(seg.Lines))
		for _, ln := range seg.Lines {
			lines = append(lines, LineResponse{
				Speaker: ln.Speaker,
				Text:    ln.Text,
				Start:   ln.Start,
				End:     ln.End,
			})
		}
		segments = append(segments, SegmentResponse{
			Start:    seg.Start,
			End:      seg.End,
			Duration: seg.Duration(),
			Lines:    lines,
		})
	}
	chair := ""
	if name, ok := set.Speakers[set.ChairID]; ok {
		chair = name.PrimaryName
	} else {
		chair = set.ChairID
	}
	return &SegmentSetResponse{
		ID:            set.ID.String(),
		JobID:         set.JobID.String(),
		TargetSpeaker: set.TargetSpeaker,
		Chair:         chair,
		Speakers:      set.Speakers,
		Segments:      segments,
		LineCount:     set.LineCount,
		WarningCount:  set.WarningCount,
		CreatedAt:     set.CreatedAt,
	}
}

// ToPolicy maps the optional request policy to the entity form
func (p *PolicyRequest) ToPolicy() entities.SegmentPolicy {
	if p == nil {
		return entities.SegmentPolicy{}
	}
	return entities.SegmentPolicy{
		MinOpenWords: p.MinOpenWords,
		GlueSeconds:  p.GlueSeconds,
		GlueLines:    p.GlueLines,
		PreSeconds:   p.PreSeconds,
		HandoffRule:  p.HandoffRule,
	}
}

// ToEntities converts the align request payload into domain values
func (r *AlignRequest) ToEntities() ([]entities.TranscriptLine, []entities.Caption) {
	lines := make([]entities.TranscriptLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, entities.TranscriptLine{
			Speaker: l.Speaker,
			Text:    l.Text,
			Start:   l.Start,
			End:     l.End,
		})
	}
	captions := make([]entities.Caption, 0, len(r.Captions))
	for _, c := range r.Captions {
		captions = append(captions, entities.Caption{
			Start: c.Start,
			End:   c.End,
			Text:  c.Text,
		})
	}
	return lines, captions
}
