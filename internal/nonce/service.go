package nonce

import (
	"context"
)

type DataProvider interface {
	Increment(ctx context.Context, name string) (int64, error)
}

type Service struct {
	repo    DataProvider
	counter string
}

func NewService(r DataProvider) *Service {
	return &Service{
		repo:    r,
		counter: DefaultCounter,
	}
}

// Next returns a value never handed out before
func (s *Service) Next(ctx context.Context) (int64, error) {
	return s.repo.Increment(ctx, s.counter)
}
