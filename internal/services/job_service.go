package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/jacker/internal/models"
	"gorm.io/gorm"
)

// JobStore is what the pipeline and the dashboard need from persistence.
type JobStore interface {
	Create(ctx context.Context, job *models.TrackedJob) (string, error)
	ListAll(ctx context.Context) ([]models.TrackedJob, error)
	UpdateStatus(ctx context.Context, id string, status models.JobStatus) error
}

type JobService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{
		DB:    db,
		Clock: NewMonotonicClock(time.Now),
	}
}

// Create assigns the id and trackedAt, then inserts the record.
// Any caller-provided ID or TrackedAt is overwritten.
func (s *JobService) Create(ctx context.Context, job *models.TrackedJob) (string, error) {
	job.ID = uuid.NewString()
	job.TrackedAt = s.Clock.Now()

	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return "", fmt.Errorf("%w: create job: %v", ErrStoreUnavailable, err)
	}
	return job.ID, nil
}

// ListAll returns every record, newest first.
func (s *JobService) ListAll(ctx context.Context) ([]models.TrackedJob, error) {
	jobs := []models.TrackedJob{}
	err := s.DB.WithContext(ctx).
		Order("tracked_at desc").
		Order("id desc").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", ErrStoreUnavailable, err)
	}
	if jobs == nil {
		jobs = []models.TrackedJob{}
	}
	return jobs, nil
}

// UpdateStatus overwrites only the status column.
func (s *JobService) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	res := s.DB.WithContext(ctx).
		Model(&models.TrackedJob{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("%w: update status: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s", ErrNotFound, id)
	}
	return nil
}

// Clock hands out creation timestamps.
type Clock interface {
	Now() time.Time
}

// MonotonicClock never returns a time earlier than one it already returned,
// so creation order and trackedAt order agree within a process.
type MonotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	return &MonotonicClock{now: now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Postgres keeps microseconds; round before comparing so the stored value is what we hand out.
	t := c.now().UTC().Round(time.Microsecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
