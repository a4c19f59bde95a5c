package ledger

import (
	"context"
	"fmt"
	"strings"

	"go.openly.dev/pointy"
)

type DataProvider interface {
	Create(*Message) error
	GetByFilters([]Filter) ([]Message, error)
	GetScore(address string) (int64, error)
	GetTopScores(limit int) ([]Score, error)
}

type Service struct {
	repo DataProvider
}

func NewService(r DataProvider) *Service {
	return &Service{
		repo: r,
	}
}

// Append stores the attempt, the id and timestamp are assigned by the store
func (s *Service) Append(_ context.Context, msg *Message) error {
	if err := s.repo.Create(msg); err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// Query returns a page ordered by id desc. NextCursor is nil for an empty page.
func (s *Service) Query(_ context.Context, q Query) (*Page, error) {
	filters := []Filter{
		OrderByIDFilter{Desc: true},
		PageFilter{Limit: NormalizeLimit(q.Limit, DefaultLimit)},
	}
	if q.UserAddress != "" {
		filters = append(filters, UserAddressFilter{Address: NormalizeAddress(q.UserAddress)})
	}
	if q.Cursor != nil {
		filters = append(filters, CursorFilter{Before: *q.Cursor})
	}

	list, err := s.repo.GetByFilters(filters)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	page := &Page{Messages: list}
	if len(list) > 0 {
		page.NextCursor = pointy.Uint64(list[len(list)-1].ID)
	}

	return page, nil
}

// All returns every attempt in insertion order
func (s *Service) All(_ context.Context) ([]Message, error) {
	list, err := s.repo.GetByFilters([]Filter{OrderByIDFilter{Desc: false}})
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	return list, nil
}

func (s *Service) Score(_ context.Context, address string) (int64, error) {
	score, err := s.repo.GetScore(NormalizeAddress(address))
	if err != nil {
		return 0, fmt.Errorf("get score: %w", err)
	}

	return score, nil
}

func (s *Service) Leaderboard(_ context.Context, limit int) ([]Score, error) {
	list, err := s.repo.GetTopScores(NormalizeLimit(limit, DefaultLimit))
	if err != nil {
		return nil, fmt.Errorf("get top scores: %w", err)
	}

	return list, nil
}

// NormalizeAddress is the stored form of a wallet address
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func NormalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}

	if limit > MaxLimit {
		return MaxLimit
	}

	return limit
}
