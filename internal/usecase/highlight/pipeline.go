package highlight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/boardcut/boardcut/errors"
	"github.com/boardcut/boardcut/internal/domain/entities"
	"github.com/boardcut/boardcut/internal/usecase/segment"
	"github.com/boardcut/boardcut/internal/usecase/speaker"
)

// runPipeline resolves speakers, builds segments, renders and uploads the
// segments file, and persists the segment set. It assumes the job is already
// in processing state.
func (s *highlightService) runPipeline(ctx context.Context, job *entities.HighlightJob, transcript *entities.Transcript) (*entities.SegmentSet, error) {
	lines := transcript.Utterances
	if len(lines) == 0 {
		return nil, apperrors.ErrResolutionFailed(fmt.Errorf("transcript %s has no utterances", transcript.ID))
	}

	resolution := speaker.Resolve(lines)
	named := speaker.Apply(lines, resolution)
	chairName := resolution.ChairName()

	s.logger.Info("speakers resolved",
		zap.String("job_id", job.ID.String()),
		zap.Int("resolved_count", len(resolution.Speakers)),
		zap.String("chair", chairName),
	)

	policy := s.segmentPolicy(job, chairName)
	result := segment.NewBuilder(policy).Build(named)
	for _, w := range result.Warnings {
		s.logger.Warn("transcript line skipped",
			zap.String("job_id", job.ID.String()),
			zap.Int("line_index", w.Index),
			zap.String("reason", w.Reason),
		)
	}

	var rendered strings.Builder
	if err := result.Render(&rendered); err != nil {
		return nil, apperrors.ErrSegmentationFailed(err)
	}

	objectKey := fmt.Sprintf("segments/%s.txt", job.ID)
	if err := s.store.UploadText(ctx, objectKey, rendered.String()); err != nil {
		return nil, apperrors.ErrStorageFailed("upload segments file", err)
	}

	set := entities.NewSegmentSet(job.ID, job.TargetSpeaker)
	set.ChairID = resolution.ChairID
	set.Speakers = resolution.Speakers
	set.Segments = result.Segments
	set.ObjectKey = objectKey
	set.LineCount = len(named)
	set.WarningCount = len(result.Warnings)
	if err := s.segmentSetRepo.CreateSegmentSet(ctx, set); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create segment set", err)
	}

	job.Metadata.SegmentCount = len(result.Segments)
	job.Metadata.SkippedLineCount = len(result.Warnings)
	job.Metadata.SpeakerCount = transcript.SpeakerCount
	job.Metadata.DurationSeconds = transcript.AudioSeconds
	job.Metadata.Language = transcript.Language
	if err := s.jobRepo.UpdateJob(ctx, job); err != nil {
		s.logger.Warn("failed to update job metadata", zap.Error(err))
	}

	if err := s.jobRepo.MarkJobAsCompleted(ctx, job.ID, &set.ID); err != nil {
		return nil, apperrors.ErrDBQueryFailed("mark job completed", err)
	}

	s.logger.Info("highlight job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("segment_set_id", set.ID.String()),
		zap.Int("segment_count", len(result.Segments)),
		zap.Int("warning_count", len(result.Warnings)),
	)
	return set, nil
}

// segmentPolicy merges the configured pipeline defaults with the job's
// per-job overrides.
func (s *highlightService) segmentPolicy(job *entities.HighlightJob, chairName string) segment.Policy {
	p := segment.Policy{
		TargetSpeaker: job.TargetSpeaker,
		ChairName:     chairName,
		MinOpenWords:  s.cfg.Pipeline.MinOpenWords,
		GlueWindow:    s.cfg.Pipeline.GlueWindow,
		GlueLines:     s.cfg.Pipeline.GlueLines,
		Handoff:       segment.RuleFor(s.cfg.Pipeline.HandoffRule),
	}
	if job.Policy.MinOpenWords > 0 {
		p.MinOpenWords = job.Policy.MinOpenWords
	}
	if job.Policy.GlueSeconds > 0 {
		p.GlueWindow = time.Duration(job.Policy.GlueSeconds * float64(time.Second))
	}
	if job.Policy.GlueLines > 0 {
		p.GlueLines = job.Policy.GlueLines
	}
	if job.Policy.PreSeconds > 0 {
		p.PreContext = time.Duration(job.Policy.PreSeconds * float64(time.Second))
	}
	if job.Policy.HandoffRule != "" {
		p.Handoff = segment.RuleFor(job.Policy.HandoffRule)
	}
	return p
}
