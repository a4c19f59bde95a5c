package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ai-capital/ai-capital-backend/internal/metrics"
)

type DataProvider interface {
	Create(job *Job) error
	GetByID(id uuid.UUID) (*Job, error)
	UpdateStatus(id uuid.UUID, from, to Status, errText string) (bool, error)
	HasPending(user string) (bool, error)
}

type Queue interface {
	Enqueue(ctx context.Context, id uuid.UUID) error
}

// Service hands approved pitches over to the settlement queue without
// waiting for the on-chain work.
type Service struct {
	repo  DataProvider
	queue Queue
}

func NewService(r DataProvider, q Queue) *Service {
	return &Service{
		repo:  r,
		queue: q,
	}
}

// Dispatch stores the job and enqueues it. The returned id is the handle
// reported to the caller.
func (s *Service) Dispatch(ctx context.Context, req Request) (uuid.UUID, error) {
	job := &Job{
		ID:          uuid.New(),
		MessageID:   req.MessageID,
		UserAddress: req.UserAddress,
		SellToken:   req.SellToken,
		BuyToken:    req.BuyToken,
		Percent:     req.Percent,
		Status:      StatusQueued,
	}

	if err := s.repo.Create(job); err != nil {
		if errors.Is(err, ErrDuplicateJob) {
			return uuid.Nil, err
		}

		return uuid.Nil, fmt.Errorf("create job: %w", err)
	}

	if err := s.queue.Enqueue(ctx, job.ID); err != nil {
		if _, uerr := s.repo.UpdateStatus(job.ID, StatusQueued, StatusFailed, err.Error()); uerr != nil {
			log.Error().Err(uerr).Str("job_id", job.ID.String()).Msg("mark job as failed")
		}
		metrics.CollectSettlementJob(string(StatusFailed))

		return uuid.Nil, fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}

	log.Info().
		Str("job_id", job.ID.String()).
		Str("user_address", job.UserAddress).
		Uint64("message_id", job.MessageID).
		Msg("settlement dispatched")

	return job.ID, nil
}

func (s *Service) Get(_ context.Context, id uuid.UUID) (*Job, error) {
	return s.repo.GetByID(id)
}

// HasPending reports whether a settlement for the user has not finished yet.
func (s *Service) HasPending(_ context.Context, user string) (bool, error) {
	return s.repo.HasPending(user)
}
