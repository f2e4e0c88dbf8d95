package highlight

// CreateJobRequest represents the request to start a highlight extraction job
type CreateJobRequest struct {
	TargetSpeaker string         `json:"target_speaker" validate:"required,min=1,max=255"`
	RecordingURL  string         `json:"recording_url" validate:"required,url"`
	Policy        *PolicyRequest `json:"policy,omitempty"`
}

// PolicyRequest carries optional per-job segmentation overrides
type PolicyRequest struct {
	MinOpenWords int     `json:"min_open_words,omitempty" validate:"omitempty,min=1,max=100"`
	GlueSeconds  float64 `json:"glue_seconds,omitempty" validate:"omitempty,gt=0"`
	GlueLines    int     `json:"glue_lines,omitempty" validate:"omitempty,min=1,max=50"`
	PreSeconds   float64 `json:"pre_seconds,omitempty" validate:"omitempty,gte=0"`
	HandoffRule  string  `json:"handoff_rule,omitempty" validate:"omitempty,oneof=next-speaker titled"`
}

// AlignRequest represents the request to timestamp an externally supplied
// transcript against a caption stream and run the pipeline. Captions can be
// given structured or as raw SRT text; exactly one of the two is required.
type AlignRequest struct {
	Lines       []LineRequest    `json:"lines" validate:"required,min=1,dive"`
	Captions    []CaptionRequest `json:"captions,omitempty" validate:"omitempty,min=1,dive"`
	CaptionsSRT string           `json:"captions_srt,omitempty"`
}

// LineRequest is one untimed transcript line
type LineRequest struct {
	Speaker string   `json:"speaker" validate:"required"`
	Text    string   `json:"text" validate:"required"`
	Start   *float64 `json:"start,omitempty"`
	End     *float64 `json:"end,omitempty"`
}

// CaptionRequest is one timestamped reference caption
type CaptionRequest struct {
	Start float64 `json:"start" validate:"gte=0"`
	End   float64 `json:"end" validate:"gtefield=Start"`
	Text  string  `json:"text" validate:"required"`
}
