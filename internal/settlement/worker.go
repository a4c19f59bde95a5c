package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ai-capital/ai-capital-backend/internal/chain"
	"github.com/ai-capital/ai-capital-backend/internal/lock"
	"github.com/ai-capital/ai-capital-backend/internal/metrics"
)

const (
	globalLockKey    = "settlement"
	defaultLockRetry = 500 * time.Millisecond
)

type Pool interface {
	SwapTokens(ctx context.Context, user, sell, buy common.Address, percent uint64) error
	Transfer(ctx context.Context, receiver common.Address) error
}

type Revoker interface {
	Revoke(ctx context.Context, user common.Address) error
}

// Locker is shared by every worker that settles against the same prize pool.
type Locker interface {
	Acquire(ctx context.Context, key string) (lock.Release, error)
}

// Worker executes settlement jobs. Every job runs at most once and failed
// jobs are never retried or compensated. Workers sharing a Locker never run
// two jobs at the same time.
type Worker struct {
	repo        DataProvider
	pool        Pool
	revoker     Revoker
	locker      Locker
	maxDuration time.Duration
	lockRetry   time.Duration
}

func NewWorker(r DataProvider, pool Pool, revoker Revoker, locker Locker, maxDuration time.Duration) *Worker {
	return &Worker{
		repo:        r,
		pool:        pool,
		revoker:     revoker,
		locker:      locker,
		maxDuration: maxDuration,
		lockRetry:   defaultLockRetry,
	}
}

func (w *Worker) Process(ctx context.Context, id uuid.UUID) error {
	release, err := w.acquire(ctx)
	if err != nil {
		return fmt.Errorf("wait for settlement lock, job %s stays queued: %w", id, err)
	}
	defer release()

	claimed, err := w.repo.UpdateStatus(id, StatusQueued, StatusRunning, "")
	if err != nil {
		return fmt.Errorf("claim job %s: %w", id, err)
	}

	if !claimed {
		log.Warn().Str("job_id", id.String()).Msg("settlement job is not queued, skip")

		return nil
	}

	job, err := w.repo.GetByID(id)
	if err != nil {
		w.finish(id, err)

		return fmt.Errorf("get job %s: %w", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, w.maxDuration)
	defer cancel()

	start := time.Now()
	err = w.settle(ctx, job)
	w.finish(id, err)

	logger := log.With().
		Str("job_id", id.String()).
		Str("user_address", job.UserAddress).
		Dur("duration", time.Since(start)).
		Logger()
	if err != nil {
		logger.Error().Err(err).Msg("settlement failed")

		return err
	}

	logger.Info().Msg("settlement succeeded")

	return nil
}

// acquire blocks until the global settlement lock is taken or ctx is done.
func (w *Worker) acquire(ctx context.Context) (lock.Release, error) {
	ticker := time.NewTicker(w.lockRetry)
	defer ticker.Stop()

	for {
		release, err := w.locker.Acquire(ctx, globalLockKey)
		if err == nil {
			return release, nil
		}

		if !errors.Is(err, lock.ErrLocked) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Worker) settle(ctx context.Context, job *Job) error {
	user, err := chain.ParseAddress(job.UserAddress)
	if err != nil {
		return err
	}

	sell, err := chain.ParseAddress(job.SellToken)
	if err != nil {
		return err
	}

	buy, err := chain.ParseAddress(job.BuyToken)
	if err != nil {
		return err
	}

	if err := w.pool.SwapTokens(ctx, user, sell, buy, job.Percent); err != nil {
		return fmt.Errorf("swap tokens: %w", err)
	}

	if err := w.pool.Transfer(ctx, user); err != nil {
		return fmt.Errorf("transfer prize pool: %w", err)
	}

	// winners are removed from the allow-list as well
	if err := w.revoker.Revoke(ctx, user); err != nil {
		return fmt.Errorf("dewhitelist: %w", err)
	}

	return nil
}

func (w *Worker) finish(id uuid.UUID, runErr error) {
	status, errText := StatusSucceeded, ""
	if runErr != nil {
		status, errText = StatusFailed, runErr.Error()
	}

	if _, err := w.repo.UpdateStatus(id, StatusRunning, status, errText); err != nil {
		log.Error().Err(err).Str("job_id", id.String()).Msg("store settlement status")
	}

	metrics.CollectSettlementJob(string(status))
}
