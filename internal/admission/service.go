package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ai-capital/ai-capital-backend/internal/judge"
	"github.com/ai-capital/ai-capital-backend/internal/ledger"
	"github.com/ai-capital/ai-capital-backend/internal/lock"
	"github.com/ai-capital/ai-capital-backend/internal/metrics"
	"github.com/ai-capital/ai-capital-backend/internal/screener"
	"github.com/ai-capital/ai-capital-backend/internal/settlement"
)

const (
	outcomeInvalid  = "invalid"
	outcomeBusy     = "busy"
	outcomePending  = "settlement_pending"
	outcomeUnpaid   = "unpaid"
	outcomeContent  = "rejected_content"
	outcomeApproved = "approved"
	outcomeRejected = "rejected"
	outcomeError    = "error"

	// mutationTimeout bounds allow-list transactions and ledger writes that
	// run detached from the request.
	mutationTimeout = 2 * time.Minute
)

type Oracle interface {
	Remaining(ctx context.Context, user common.Address) (uint64, error)
	Revoke(ctx context.Context, user common.Address) error
}

type Screener interface {
	Screen(ctx context.Context, text string) (screener.Classification, error)
}

type Judge interface {
	Judge(ctx context.Context, pitch judge.Pitch, injectionNote string) (judge.Result, error)
}

type Ledger interface {
	Append(ctx context.Context, msg *ledger.Message) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, req settlement.Request) (uuid.UUID, error)
	HasPending(ctx context.Context, user string) (bool, error)
}

// Locker serialises submissions per user: a held key is reported as
// lock.ErrLocked and answered with 409 instead of waiting.
type Locker interface {
	Acquire(ctx context.Context, key string) (lock.Release, error)
}

// Service runs a pitch through payment check, screening, judgment,
// ledger and settlement in this order.
type Service struct {
	oracle     Oracle
	screener   Screener
	judge      Judge
	ledger     Ledger
	dispatcher Dispatcher
	locker     Locker
}

func NewService(o Oracle, sc Screener, j Judge, l Ledger, d Dispatcher, lk Locker) *Service {
	return &Service{
		oracle:     o,
		screener:   sc,
		judge:      j,
		ledger:     l,
		dispatcher: d,
		locker:     lk,
	}
}

func (s *Service) Submit(ctx context.Context, req Request) (*Outcome, error) {
	out, outcome, err := s.submit(ctx, req)
	metrics.CollectPitchOutcome(outcome)

	return out, err
}

func (s *Service) submit(ctx context.Context, req Request) (*Outcome, string, error) {
	sub, err := req.Validate()
	if err != nil {
		return nil, outcomeInvalid, err
	}

	logger := log.With().Str("user_address", sub.Address()).Logger()

	release, err := s.locker.Acquire(ctx, sub.Address())
	if errors.Is(err, lock.ErrLocked) {
		return nil, outcomeBusy, ErrBusy
	}
	if err != nil {
		return nil, outcomeError, fmt.Errorf("acquire lock: %w", err)
	}
	defer release()

	pending, err := s.dispatcher.HasPending(ctx, sub.Address())
	if err != nil {
		return nil, outcomeError, fmt.Errorf("check pending settlement: %w", err)
	}

	if pending {
		logger.Info().Msg("pitch while a settlement is pending")

		return nil, outcomePending, ErrSettlementPending
	}

	remaining, err := s.oracle.Remaining(ctx, sub.User)
	if err != nil {
		return nil, outcomeError, fmt.Errorf("check allow-list: %w", err)
	}

	if remaining == 0 {
		logger.Info().Msg("pitch from user without paid attempts")

		return nil, outcomeUnpaid, ErrUnpaid
	}

	cls, err := s.screener.Screen(ctx, sub.Pitch)
	if errors.Is(err, screener.ErrForbiddenCharacters) {
		mctx, cancel := detach(ctx)
		defer cancel()

		if err := s.oracle.Revoke(mctx, sub.User); err != nil {
			return nil, outcomeError, fmt.Errorf("dewhitelist after content rejection: %w", err)
		}
		logger.Info().Msg("pitch rejected by content filter")

		return nil, outcomeContent, &ValidationError{Message: err.Error(), Err: ErrRejectedContent}
	}
	if err != nil {
		return nil, outcomeInvalid, &ValidationError{Message: err.Error(), Err: err}
	}

	note := ""
	if cls.IsInjection() {
		logger.Warn().Float64("score", cls.Score).Msg("prompt injection detected")

		note = judge.InjectionNote(cls.Label, cls.Score)
	}

	res, err := s.judge.Judge(ctx, judge.Pitch{
		Token:      sub.Token,
		TradeType:  string(sub.TradeType),
		Allocation: sub.Allocation.String(),
		Text:       sub.Pitch,
	}, note)
	if err != nil {
		return nil, outcomeError, fmt.Errorf("judge pitch: %w", err)
	}

	// the verdict is final from here on, the caller going away must not
	// leave it half applied
	ctx, cancel := detach(ctx)
	defer cancel()

	if !res.Parsed() {
		logger.Warn().Err(res.ParseErr).Str("raw", res.Raw).Msg("unexpected model reply, fallback verdict used")
	}

	msg := &ledger.Message{
		UserAddress:    sub.Address(),
		Token:          sub.Token,
		TradeType:      sub.TradeType,
		Allocation:     sub.Allocation.String(),
		Pitch:          sub.Pitch,
		AIResponseText: res.AIResponseText,
		Success:        res.Success,
	}
	if err := s.ledger.Append(ctx, msg); err != nil {
		return nil, outcomeError, fmt.Errorf("append ledger: %w", err)
	}

	out := &Outcome{
		AIResponse: res.AIResponseText,
		Success:    res.Success,
	}

	if !res.Success {
		if err := s.oracle.Revoke(ctx, sub.User); err != nil {
			return nil, outcomeError, fmt.Errorf("dewhitelist rejected user: %w", err)
		}

		return out, outcomeRejected, nil
	}

	handle, err := s.dispatcher.Dispatch(ctx, settlement.Request{
		MessageID:   msg.ID,
		UserAddress: sub.Address(),
		SellToken:   sub.SellToken.Hex(),
		BuyToken:    sub.BuyToken.Hex(),
		Percent:     sub.SwapPercent(),
	})
	if err != nil {
		return nil, outcomeError, fmt.Errorf("dispatch settlement for message %d: %w", msg.ID, err)
	}
	out.Handle = &handle

	logger.Info().Str("job_id", handle.String()).Uint64("message_id", msg.ID).Msg("pitch approved")

	return out, outcomeApproved, nil
}

func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), mutationTimeout)
}
