package handler

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardcut/boardcut/errors"
	dto "github.com/boardcut/boardcut/internal/adapter/dto/highlight"
	"github.com/boardcut/boardcut/internal/usecase/align"
	"github.com/boardcut/boardcut/internal/usecase/highlight"
)

// Highlight exposes the highlight job API
type Highlight struct {
	svc    highlight.Service
	logger *zap.Logger
}

// NewHighlightHandler creates a new highlight handler
func NewHighlightHandler(svc highlight.Service, logger *zap.Logger) *Highlight {
	return &Highlight{svc: svc, logger: logger}
}

// CreateJob starts a new highlight extraction job
// POST /v1/jobs
func (h *Highlight) CreateJob(c echo.Context) error {
	var req dto.CreateJobRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	job, err := h.svc.CreateJob(c.Request().Context(), req.TargetSpeaker, req.RecordingURL, req.Policy.ToPolicy())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	// Transcription and segmentation continue in the background
	return HandleAccepted(h.logger, c, dto.FromJob(job))
}

// GetJob returns a job with its current status
// GET /v1/jobs/:id
func (h *Highlight) GetJob(c echo.Context) error {
	jobID, err := parseJobID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	job, err := h.svc.GetJob(c.Request().Context(), jobID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.FromJob(job))
}

// ListJobs returns recent jobs
// GET /v1/jobs
func (h *Highlight) ListJobs(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	jobs, err := h.svc.ListJobs(c.Request().Context(), limit)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	resp := make([]*dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		resp = append(resp, dto.FromJob(&jobs[i]))
	}
	return HandleSuccess(h.logger, c, resp)
}

// GetSegments returns the stored segment set of a completed job
// GET /v1/jobs/:id/segments
func (h *Highlight) GetSegments(c echo.Context) error {
	jobID, err := parseJobID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	set, err := h.svc.GetSegmentSet(c.Request().Context(), jobID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.FromSegmentSet(set))
}

// DownloadSegmentsFile streams the rendered segments document
// GET /v1/jobs/:id/segments/file
func (h *Highlight) DownloadSegmentsFile(c echo.Context) error {
	jobID, err := parseJobID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	rc, err := h.svc.OpenSegmentsFile(c.Request().Context(), jobID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	defer rc.Close()
	return c.Stream(200, "text/plain; charset=utf-8", rc)
}

// AlignTranscript timestamps an uploaded transcript against captions and
// runs the pipeline for the job
// POST /v1/jobs/:id/align
func (h *Highlight) AlignTranscript(c echo.Context) error {
	jobID, err := parseJobID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.AlignRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if len(req.Captions) == 0 && req.CaptionsSRT == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("either captions or captions_srt is required"))
	}

	lines, captions := req.ToEntities()
	if len(captions) == 0 {
		captions, err = align.ParseSRT(strings.NewReader(req.CaptionsSRT))
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("captions_srt: "+err.Error()))
		}
	}

	set, err := h.svc.AlignAndProcess(c.Request().Context(), jobID, lines, captions)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.FromSegmentSet(set))
}

func parseJobID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument("job id must be a UUID")
	}
	return id, nil
}
