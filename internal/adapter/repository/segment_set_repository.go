package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boardcut/boardcut/internal/domain/entities"
)

// SegmentSetRepository handles segment set data operations
type SegmentSetRepository struct {
	db *gorm.DB
}

// NewSegmentSetRepository creates a new segment set repository
func NewSegmentSetRepository(db *gorm.DB) *SegmentSetRepository {
	return &SegmentSetRepository{db: db}
}

// CreateSegmentSet creates a new segment set
func (r *SegmentSetRepository) CreateSegmentSet(ctx context.Context, set *entities.SegmentSet) error {
	if set == nil {
		return errors.New("segment set cannot be nil")
	}
	return r.db.WithContext(ctx).Create(set).Error
}

// GetSegmentSetByID retrieves a segment set by ID
func (r *SegmentSetRepository) GetSegmentSetByID(ctx context.Context, id uuid.UUID) (*entities.SegmentSet, error) {
	var set entities.SegmentSet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&set).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

// GetSegmentSetByJobID retrieves the latest segment set for a highlight job
func (r *SegmentSetRepository) GetSegmentSetByJobID(ctx context.Context, jobID uuid.UUID) (*entities.SegmentSet, error) {
	var set entities.SegmentSet
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		First(&set).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

// DeleteSegmentSet deletes a segment set
func (r *SegmentSetRepository) DeleteSegmentSet(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entities.SegmentSet{}, id).Error
}
