package settlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicateJob = errors.New("settlement already dispatched for the message")
	ErrJobNotFound  = errors.New("settlement job not found")
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a new job, a second job for the same message returns ErrDuplicateJob
func (r *Repo) Create(job *Job) error {
	var exists int64
	err := r.db.Model(&Job{}).Where("message_id = ?", job.MessageID).Count(&exists).Error
	if err != nil {
		return err
	}

	if exists > 0 {
		return ErrDuplicateJob
	}

	err = r.db.Create(job).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateJob
	}

	return err
}

func (r *Repo) GetByID(id uuid.UUID) (*Job, error) {
	var job Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}

	if err != nil {
		return nil, err
	}

	return &job, nil
}

// UpdateStatus moves the job only when it is still in the from status.
// It reports whether the row was changed.
func (r *Repo) UpdateStatus(id uuid.UUID, from, to Status, errText string) (bool, error) {
	res := r.db.
		Model(&Job{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"error":      errText,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("update status: %w", res.Error)
	}

	return res.RowsAffected == 1, nil
}

// HasPending reports whether the user has a job that is queued or running.
func (r *Repo) HasPending(user string) (bool, error) {
	var count int64
	err := r.db.
		Model(&Job{}).
		Where("user_address = ? AND status IN ?", user, []Status{StatusQueued, StatusRunning}).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("count pending jobs: %w", err)
	}

	return count > 0, nil
}

// Queued returns ids of jobs still waiting for a worker, oldest first.
func (r *Repo) Queued() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.
		Model(&Job{}).
		Where("status = ?", StatusQueued).
		Order("created_at").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, fmt.Errorf("list queued jobs: %w", err)
	}

	return ids, nil
}
