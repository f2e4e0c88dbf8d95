package highlight

import (
	"context"
	"fmt"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/boardcut/boardcut/internal/domain/entities"
	"github.com/boardcut/boardcut/pkg/jobcontext"
)

// StartWorkerPool starts background workers: pending-job submission and the
// webhook timeout safety net.
func (s *highlightService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	s.logger.Info("starting highlight worker pool",
		zap.Int("worker_count", workerCount),
	)

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.pendingJobWorker(ctx, i)
	}

	s.workerWg.Add(1)
	go s.webhookTimeoutWorker(ctx)

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *highlightService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	s.logger.Info("stopping highlight worker pool")
	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	return nil
}

// pendingJobWorker polls for pending or retrying jobs and submits them for
// transcription. The claim update is atomic so only one worker wins a job.
func (s *highlightService) pendingJobWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	s.logger.Info("pending job worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-s.workerStopChan:
			s.logger.Info("pending job worker stopping", zap.Int("worker_id", workerID))
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.GetJobsForProcessing(parentCtx, 5)
			if err != nil {
				s.logger.Error("failed to poll pending jobs", zap.Error(err))
				continue
			}

			for _, job := range jobs {
				claimed, err := s.jobRepo.ClaimJob(parentCtx, job.ID, job.Status, entities.HighlightJobStatusSubmitted)
				if err != nil {
					s.logger.Error("failed to claim job",
						zap.String("job_id", job.ID.String()),
						zap.Error(err),
					)
					continue
				}
				if !claimed {
					continue
				}

				jobCtx, cancel := jobcontext.JobBegin(parentCtx, job.ID, "transcription", workerID)
				err = jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
					return s.SubmitJob(ctx, job.ID)
				})

				jobID, _ := jobcontext.GetJobID(jobCtx)
				jobType, _ := jobcontext.GetJobType(jobCtx)
				startedAt, _ := jobcontext.GetJobStartTime(jobCtx)
				if err != nil {
					s.logger.Error("submission failed after retries",
						zap.String("job_id", jobID.String()),
						zap.String("job_type", jobType),
						zap.Int("worker_id", jobcontext.GetWorkerID(jobCtx)),
						zap.Duration("elapsed", time.Since(startedAt)),
						zap.Error(err),
					)
					// SubmitJob already moved the job to retrying or failed
				} else {
					s.logger.Info("pending job submitted",
						zap.String("job_id", jobID.String()),
						zap.String("job_type", jobType),
						zap.Duration("elapsed", time.Since(startedAt)),
					)
				}
				cancel()
			}
		}
	}
}

// webhookTimeoutWorker polls the transcription provider for jobs stuck in
// submitted status, recovering transcripts whose webhook never arrived.
func (s *highlightService) webhookTimeoutWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()

	s.logger.Info("webhook timeout worker started")

	for {
		select {
		case <-s.workerStopChan:
			s.logger.Info("webhook timeout worker stopping")
			return

		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			stuckJobs, err := s.jobRepo.GetStuckJobs(parentCtx, cutoff)
			if err != nil {
				s.logger.Error("failed to query stuck jobs", zap.Error(err))
				continue
			}

			for i := range stuckJobs {
				job := stuckJobs[i]
				if job.ExternalJobID == nil || *job.ExternalJobID == "" {
					s.jobRepo.MarkJobAsFailed(parentCtx, job.ID, "no external transcript ID")
					continue
				}
				transcriptID := *job.ExternalJobID

				s.logger.Info("polling provider for stuck job",
					zap.String("job_id", job.ID.String()),
					zap.String("transcript_id", transcriptID),
					zap.Duration("stuck_for", time.Since(job.UpdatedAt)),
				)

				transcript, err := s.asmClient.Transcripts.Get(parentCtx, transcriptID)
				if err != nil {
					// Possibly a transient provider error, leave for next tick
					s.logger.Error("failed to poll provider",
						zap.String("transcript_id", transcriptID),
						zap.Error(err),
					)
					continue
				}

				switch transcript.Status {
				case aai.TranscriptStatusCompleted:
					if err := s.handleCompletedTranscript(parentCtx, &job, transcriptID); err != nil {
						s.logger.Error("failed to process recovered transcript",
							zap.String("job_id", job.ID.String()),
							zap.Error(err),
						)
					}
				case aai.TranscriptStatusError:
					errMsg := "transcription failed upstream"
					if transcript.Error != nil {
						errMsg = *transcript.Error
					}
					s.jobRepo.MarkJobAsFailed(parentCtx, job.ID, errMsg)
				default:
					// Still queued or processing, extend the timeout window
					s.jobRepo.TouchJob(parentCtx, job.ID)
				}
			}
		}
	}
}
