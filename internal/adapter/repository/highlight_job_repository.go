package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

// HighlightJobRepository handles highlight job data operations
type HighlightJobRepository struct {
	db *gorm.DB
}

// NewHighlightJobRepository creates a new highlight job repository
func NewHighlightJobRepository(db *gorm.DB) *HighlightJobRepository {
	return &HighlightJobRepository{db: db}
}

// GetDB exposes the underlying handle for atomic claim updates
func (r *HighlightJobRepository) GetDB() *gorm.DB {
	return r.db
}

// CreateJob creates a new highlight job
func (r *HighlightJobRepository) CreateJob(ctx context.Context, job *entities.HighlightJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJobByID retrieves a highlight job by ID
func (r *HighlightJobRepository) GetJobByID(ctx context.Context, jobID uuid.UUID) (*entities.HighlightJob, error) {
	var job entities.HighlightJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetJobByExternalID retrieves a highlight job by external job ID (AssemblyAI transcript ID)
func (r *HighlightJobRepository) GetJobByExternalID(ctx context.Context, externalID string) (*entities.HighlightJob, error) {
	var job entities.HighlightJob
	if err := r.db.WithContext(ctx).Where("external_job_id = ?", externalID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ListJobs retrieves recent jobs, newest first
func (r *HighlightJobRepository) ListJobs(ctx context.Context, limit int) ([]entities.HighlightJob, error) {
	var jobs []entities.HighlightJob
	if limit == 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJobStatus updates the status of a highlight job
func (r *HighlightJobRepository) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status entities.HighlightJobStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ?", jobID).
		Update("status", status).Error
}

// ClaimJob atomically moves a job from one status to another. Returns false
// when another worker got there first.
func (r *HighlightJobRepository) ClaimJob(ctx context.Context, jobID uuid.UUID, from, to entities.HighlightJobStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ? AND status = ?", jobID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkJobAsSubmitted marks a job as submitted with external ID
func (r *HighlightJobRepository) MarkJobAsSubmitted(ctx context.Context, jobID uuid.UUID, externalID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":          entities.HighlightJobStatusSubmitted,
			"external_job_id": externalID,
			"started_at":      now,
			"updated_at":      now,
		}).Error
}

// MarkJobAsCompleted marks a job as completed with its segment set ID
func (r *HighlightJobRepository) MarkJobAsCompleted(ctx context.Context, jobID uuid.UUID, segmentSetID *uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":         entities.HighlightJobStatusCompleted,
			"segment_set_id": segmentSetID,
			"completed_at":   now,
			"updated_at":     now,
		}).Error
}

// MarkJobAsFailed marks a job as failed with error message
func (r *HighlightJobRepository) MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.HighlightJobStatusFailed,
			"last_error": errMsg,
			"updated_at": now,
		}).Error
}

// SetTranscriptID links the stored transcript to the job
func (r *HighlightJobRepository) SetTranscriptID(ctx context.Context, jobID, transcriptID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ?", jobID).
		Update("transcript_id", transcriptID).Error
}

// IncrementRetryCount increments the retry count and marks the job retrying
func (r *HighlightJobRepository) IncrementRetryCount(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"status":      entities.HighlightJobStatusRetrying,
			"last_error":  errMsg,
			"updated_at":  now,
		}).Error
}

// UpdateJob saves the full job row, used for metadata updates
func (r *HighlightJobRepository) UpdateJob(ctx context.Context, job *entities.HighlightJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ?", job.ID).
		Save(job).Error
}

// GetJobsForProcessing retrieves jobs waiting to be submitted
func (r *HighlightJobRepository) GetJobsForProcessing(ctx context.Context, limit int) ([]entities.HighlightJob, error) {
	var jobs []entities.HighlightJob
	if limit == 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []entities.HighlightJobStatus{entities.HighlightJobStatusPending, entities.HighlightJobStatusRetrying}).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetStuckJobs retrieves submitted jobs whose webhook never arrived
func (r *HighlightJobRepository) GetStuckJobs(ctx context.Context, cutoff time.Time) ([]entities.HighlightJob, error) {
	var jobs []entities.HighlightJob
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", entities.HighlightJobStatusSubmitted, cutoff).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// TouchJob bumps updated_at to reset a timeout window
func (r *HighlightJobRepository) TouchJob(ctx context.Context, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.HighlightJob{}).
		Where("id = ?", jobID).
		Update("updated_at", time.Now()).Error
}
