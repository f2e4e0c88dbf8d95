package highlight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/boardcut/boardcut/errors"
	"github.com/boardcut/boardcut/internal/adapter/repository"
	"github.com/boardcut/boardcut/internal/domain/entities"
	"github.com/boardcut/boardcut/internal/infrastructure/cache"
	"github.com/boardcut/boardcut/internal/infrastructure/storage"
	"github.com/boardcut/boardcut/internal/usecase/align"
	pkgai "github.com/boardcut/boardcut/pkg/ai"
	"github.com/boardcut/boardcut/pkg/config"
	"github.com/boardcut/boardcut/pkg/jobcontext"
)

// Service orchestrates highlight extraction jobs: submission to the
// transcription provider, webhook handling, and the align/resolve/segment
// pipeline.
type Service interface {
	CreateJob(ctx context.Context, targetSpeaker, recordingURL string, policy entities.SegmentPolicy) (*entities.HighlightJob, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*entities.HighlightJob, error)
	ListJobs(ctx context.Context, limit int) ([]entities.HighlightJob, error)
	GetSegmentSet(ctx context.Context, jobID uuid.UUID) (*entities.SegmentSet, error)
	OpenSegmentsFile(ctx context.Context, jobID uuid.UUID) (io.ReadCloser, error)
	AlignAndProcess(ctx context.Context, jobID uuid.UUID, lines []entities.TranscriptLine, captions []entities.Caption) (*entities.SegmentSet, error)
	SubmitJob(ctx context.Context, jobID uuid.UUID) error
	HandleTranscriptWebhook(ctx context.Context, payload []byte, signature string) error
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type highlightService struct {
	jobRepo        *repository.HighlightJobRepository
	transcriptRepo *repository.TranscriptRepository
	segmentSetRepo *repository.SegmentSetRepository
	store          *storage.MinIOClient
	cache          cache.Store
	asmClient      *aai.Client
	cfg            *config.Config
	logger         *zap.Logger

	uploadSemaphore     chan struct{} // limit concurrent submissions
	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewService constructs the highlight service
func NewService(
	jobRepo *repository.HighlightJobRepository,
	transcriptRepo *repository.TranscriptRepository,
	segmentSetRepo *repository.SegmentSetRepository,
	store *storage.MinIOClient,
	cacheStore cache.Store,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	asmClient := aai.NewClient(cfg.Assembly.APIKey)

	return &highlightService{
		jobRepo:         jobRepo,
		transcriptRepo:  transcriptRepo,
		segmentSetRepo:  segmentSetRepo,
		store:           store,
		cache:           cacheStore,
		asmClient:       asmClient,
		cfg:             cfg,
		logger:          logger,
		uploadSemaphore: make(chan struct{}, 2),
		workerStopChan:  make(chan struct{}),
	}
}

// CreateJob persists a new job and hands it to the submission path. The
// pending-job worker picks it up if the immediate submission fails.
func (s *highlightService) CreateJob(ctx context.Context, targetSpeaker, recordingURL string, policy entities.SegmentPolicy) (*entities.HighlightJob, error) {
	if strings.TrimSpace(targetSpeaker) == "" {
		return nil, apperrors.ErrInvalidArgument("target_speaker is required")
	}
	if strings.TrimSpace(recordingURL) == "" {
		return nil, apperrors.ErrMissingRecordingURL()
	}

	job := entities.NewHighlightJob(strings.TrimSpace(targetSpeaker), strings.TrimSpace(recordingURL), policy)
	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create highlight job", err)
	}

	s.logger.Info("highlight job created",
		zap.String("job_id", job.ID.String()),
		zap.String("target_speaker", job.TargetSpeaker),
	)

	go func() {
		submitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.SubmitJob(submitCtx, job.ID); err != nil {
			s.logger.Error("initial submission failed, pending worker will retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	}()

	return job, nil
}

// GetJob retrieves a job by ID. Results are cached briefly so status polling
// does not hammer the database.
func (s *highlightService) GetJob(ctx context.Context, jobID uuid.UUID) (*entities.HighlightJob, error) {
	cacheKey := "job:" + jobID.String()
	if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
		var job entities.HighlightJob
		if err := json.Unmarshal([]byte(cached), &job); err == nil {
			return &job, nil
		}
	}

	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get highlight job", err)
	}
	if job == nil {
		return nil, apperrors.ErrJobNotFound(jobID.String())
	}

	if encoded, err := json.Marshal(job); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(encoded), 10*time.Second); err != nil {
			s.logger.Debug("failed to cache job", zap.Error(err))
		}
	}
	return job, nil
}

// ListJobs retrieves recent jobs
func (s *highlightService) ListJobs(ctx context.Context, limit int) ([]entities.HighlightJob, error) {
	jobs, err := s.jobRepo.ListJobs(ctx, limit)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list highlight jobs", err)
	}
	return jobs, nil
}

// GetSegmentSet retrieves the stored segments of a completed job
func (s *highlightService) GetSegmentSet(ctx context.Context, jobID uuid.UUID) (*entities.SegmentSet, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != entities.HighlightJobStatusCompleted {
		return nil, apperrors.ErrSegmentsNotReady(jobID.String())
	}
	set, err := s.segmentSetRepo.GetSegmentSetByJobID(ctx, jobID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get segment set", err)
	}
	if set == nil {
		return nil, apperrors.ErrSegmentsNotReady(jobID.String())
	}
	return set, nil
}

// OpenSegmentsFile streams the rendered segments document from storage
func (s *highlightService) OpenSegmentsFile(ctx context.Context, jobID uuid.UUID) (io.ReadCloser, error) {
	set, err := s.GetSegmentSet(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if set.ObjectKey == "" {
		return nil, apperrors.ErrSegmentsNotReady(jobID.String())
	}
	rc, err := s.store.DownloadFile(ctx, set.ObjectKey)
	if err != nil {
		return nil, apperrors.ErrStorageFailed("download segments file", err)
	}
	return rc, nil
}

// SubmitJob submits a job's recording to AssemblyAI for diarized
// transcription. The external transcript ID is persisted before returning so
// the webhook can find the job even when it fires within seconds.
func (s *highlightService) SubmitJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return apperrors.ErrDBQueryFailed("get highlight job", err)
	}
	if job == nil {
		return apperrors.ErrJobNotFound(jobID.String())
	}
	if job.RecordingURL == "" {
		return apperrors.ErrMissingRecordingURL()
	}

	// Limit concurrent submissions
	s.uploadSemaphore <- struct{}{}
	defer func() { <-s.uploadSemaphore }()

	var transcriptID string
	submitFn := func() error {
		recordingURL := strings.TrimSpace(job.RecordingURL)

		params := &aai.TranscriptOptionalParams{
			SpeakerLabels: aai.Bool(true),
		}
		if s.cfg.Assembly.LanguageCode != "" {
			params.LanguageCode = aai.TranscriptLanguageCode(s.cfg.Assembly.LanguageCode)
		}
		if s.cfg.Assembly.WebhookBaseURL != "" {
			webhookURL := s.cfg.Assembly.WebhookBaseURL
			params.WebhookURL = &webhookURL
		}

		transcript, err := s.asmClient.Transcripts.TranscribeFromURL(ctx, recordingURL, params)
		if err != nil {
			return err
		}
		if transcript.ID != nil {
			transcriptID = *transcript.ID
		}

		// Persist external ID immediately to avoid racing the webhook
		if err := s.jobRepo.MarkJobAsSubmitted(ctx, job.ID, transcriptID); err != nil {
			return fmt.Errorf("failed to persist external job id: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		if jobcontext.IsRetryableError(err) && job.RetryCount < job.MaxRetries {
			s.jobRepo.IncrementRetryCount(ctx, job.ID, err.Error())
		} else {
			s.jobRepo.MarkJobAsFailed(ctx, job.ID, err.Error())
		}
		s.logger.Error("failed to submit recording for transcription",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return apperrors.ErrAITranscriptionFailed(err)
	}

	s.logger.Info("recording submitted for transcription",
		zap.String("job_id", job.ID.String()),
		zap.String("transcript_id", transcriptID),
	)
	return nil
}

// AlignAndProcess runs the full pipeline for an externally supplied plain
// transcript and caption stream: timestamp lines against the captions, then
// resolve speakers and build segments.
func (s *highlightService) AlignAndProcess(ctx context.Context, jobID uuid.UUID, lines []entities.TranscriptLine, captions []entities.Caption) (*entities.SegmentSet, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	opts := align.DefaultOptions()
	opts.BandRadius = s.cfg.Pipeline.BandRadius
	aligned, err := align.AlignLines(lines, captions, opts)
	if err != nil {
		return nil, apperrors.ErrAlignmentFailed(err)
	}

	transcript := entities.NewTranscript(job.ID)
	transcript.Utterances = aligned
	transcript.ModelUsed = "upload+dtw"
	if err := s.transcriptRepo.CreateTranscript(ctx, transcript); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create transcript", err)
	}
	if err := s.jobRepo.SetTranscriptID(ctx, job.ID, transcript.ID); err != nil {
		s.logger.Warn("failed to link transcript to job", zap.Error(err))
	}

	set, err := s.runPipeline(ctx, job, transcript)
	if err != nil {
		s.jobRepo.MarkJobAsFailed(ctx, job.ID, err.Error())
		return nil, err
	}
	return set, nil
}

// HandleTranscriptWebhook processes AssemblyAI webhook payloads. Deliveries
// are deduplicated through the cache so replays are harmless.
func (s *highlightService) HandleTranscriptWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.cfg.Assembly.WebhookSecret != "" {
		if !pkgai.VerifyHMAC(s.cfg.Assembly.WebhookSecret, payload, signature) {
			s.logger.Warn("webhook signature verification failed")
			return apperrors.ErrInvalidPayload()
		}
	}

	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		return apperrors.ErrInvalidPayload()
	}

	transcriptID, _ := body["transcript_id"].(string)
	if transcriptID == "" {
		transcriptID, _ = body["id"].(string)
	}
	if transcriptID == "" {
		return apperrors.ErrInvalidPayload().WithDetail("reason", "transcript id missing")
	}
	status, _ := body["status"].(string)

	// Dedupe replayed deliveries
	dedupeKey := fmt.Sprintf("webhook:%s:%s", transcriptID, status)
	claimed, err := s.cache.SetNX(ctx, dedupeKey, "1", 24*time.Hour)
	if err != nil {
		s.logger.Warn("webhook dedupe check failed, continuing", zap.Error(err))
	} else if !claimed {
		s.logger.Info("duplicate webhook delivery ignored",
			zap.String("transcript_id", transcriptID),
			zap.String("status", status),
		)
		return nil
	}

	job, err := s.jobRepo.GetJobByExternalID(ctx, transcriptID)
	if err != nil {
		return apperrors.ErrDBQueryFailed("get job by external id", err)
	}
	if job == nil {
		return apperrors.ErrJobNotFound(transcriptID)
	}

	s.logger.Info("transcription webhook received",
		zap.String("job_id", job.ID.String()),
		zap.String("transcript_id", transcriptID),
		zap.String("status", status),
	)

	switch status {
	case "completed":
		return s.handleCompletedTranscript(ctx, job, transcriptID)
	case "error":
		errMsg := fmt.Sprintf("transcription error: %v", body["error"])
		if err := s.jobRepo.MarkJobAsFailed(ctx, job.ID, errMsg); err != nil {
			s.logger.Error("failed to mark job as failed", zap.Error(err))
		}
		return nil
	default:
		// Still queued or processing upstream, reset the timeout window
		return s.jobRepo.TouchJob(ctx, job.ID)
	}
}

// handleCompletedTranscript fetches the full diarized transcript, stores it,
// and runs the pipeline. The submitted->processing claim is atomic so a
// webhook retry and the timeout worker never process the same job twice.
func (s *highlightService) handleCompletedTranscript(ctx context.Context, job *entities.HighlightJob, transcriptID string) error {
	claimed, err := s.jobRepo.ClaimJob(ctx, job.ID, entities.HighlightJobStatusSubmitted, entities.HighlightJobStatusProcessing)
	if err != nil {
		return apperrors.ErrDBQueryFailed("claim job", err)
	}
	if !claimed {
		s.logger.Info("job already being processed, skipping",
			zap.String("job_id", job.ID.String()),
		)
		return nil
	}

	transcript, err := s.asmClient.Transcripts.Get(ctx, transcriptID)
	if err != nil {
		s.jobRepo.MarkJobAsFailed(ctx, job.ID, err.Error())
		return apperrors.ErrAITranscriptionFailed(err)
	}

	lines := pkgai.AlignedLines(&transcript)
	if len(lines) == 0 {
		err := fmt.Errorf("transcript %s has no diarized utterances", transcriptID)
		s.jobRepo.MarkJobAsFailed(ctx, job.ID, err.Error())
		return apperrors.ErrAITranscriptionFailed(err)
	}

	stored := entities.NewTranscript(job.ID)
	stored.Utterances = lines
	stored.Language = pkgai.Language(&transcript)
	stored.SpeakerCount = pkgai.SpeakerCount(&transcript)
	stored.AudioSeconds = pkgai.AudioSeconds(&transcript)
	stored.ModelUsed = "assemblyai"
	if err := s.transcriptRepo.CreateTranscript(ctx, stored); err != nil {
		s.jobRepo.MarkJobAsFailed(ctx, job.ID, err.Error())
		return apperrors.ErrDBQueryFailed("create transcript", err)
	}
	if err := s.jobRepo.SetTranscriptID(ctx, job.ID, stored.ID); err != nil {
		s.logger.Warn("failed to link transcript to job", zap.Error(err))
	}

	s.logger.Info("diarized transcript stored",
		zap.String("job_id", job.ID.String()),
		zap.Int("utterance_count", len(lines)),
		zap.Int("speaker_count", stored.SpeakerCount),
	)

	if _, err := s.runPipeline(ctx, job, stored); err != nil {
		s.jobRepo.MarkJobAsFailed(ctx, job.ID, err.Error())
		return err
	}
	return nil
}
