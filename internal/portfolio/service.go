package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.openly.dev/pointy"
	"golang.org/x/sync/errgroup"

	"github.com/ai-capital/ai-capital-backend/pkg/sdk/moralis"
)

type DataProvider interface {
	Create(*Snapshot) error
	GetByFilters([]Filter) ([]Snapshot, error)
}

type TokenFetcher interface {
	GetWalletTokens(ctx context.Context, address, chain string) (*moralis.WalletTokens, error)
	GetWalletHistory(ctx context.Context, address, chain string) (*moralis.WalletHistory, error)
}

type Service struct {
	repo         DataProvider
	fetcher      TokenFetcher
	wallet       string
	chains       []string
	historyChain string
}

func NewService(r DataProvider, f TokenFetcher, wallet string, chains []string, historyChain string) *Service {
	return &Service{
		repo:         r,
		fetcher:      f,
		wallet:       wallet,
		chains:       chains,
		historyChain: historyChain,
	}
}

// Tokens returns wallet tokens over all chains. A chain that fails to load
// contributes no tokens.
func (s *Service) Tokens(ctx context.Context) ([]moralis.Token, error) {
	results := make([][]moralis.Token, len(s.chains))

	g, gctx := errgroup.WithContext(ctx)
	for i, chain := range s.chains {
		g.Go(func() error {
			resp, err := s.fetcher.GetWalletTokens(gctx, s.wallet, chain)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				log.Warn().Err(err).Str("chain", chain).Msg("fetch wallet tokens")

				return nil
			}

			list := make([]moralis.Token, 0, len(resp.Result))
			for _, t := range resp.Result {
				t.Chain = chain
				list = append(list, t)
			}
			results[i] = list

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tokens := make([]moralis.Token, 0)
	for _, list := range results {
		tokens = append(tokens, list...)
	}

	return tokens, nil
}

// USDCValue returns the usd value of the first USDC position, zero if there is none
func (s *Service) USDCValue(ctx context.Context) (float64, error) {
	tokens, err := s.Tokens(ctx)
	if err != nil {
		return 0, err
	}

	for _, t := range tokens {
		if strings.EqualFold(t.Symbol, usdcSymbol) && t.USDValue > 0 {
			return t.USDValue, nil
		}
	}

	return 0, nil
}

// History returns the latest fund wallet transactions on the history chain
func (s *Service) History(ctx context.Context) ([]moralis.Transaction, error) {
	resp, err := s.fetcher.GetWalletHistory(ctx, s.wallet, s.historyChain)
	if err != nil {
		return nil, fmt.Errorf("fetch wallet history on %s: %w", s.historyChain, err)
	}

	if resp.Result == nil {
		return []moralis.Transaction{}, nil
	}

	return resp.Result, nil
}

// TakeSnapshot stores the current token list
func (s *Service) TakeSnapshot(ctx context.Context) (*Snapshot, error) {
	tokens, err := s.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(tokens)
	if err != nil {
		return nil, fmt.Errorf("marshal tokens: %w", err)
	}

	snapshot := &Snapshot{Status: data}
	if err := s.repo.Create(snapshot); err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}

	log.Info().Uint64("id", snapshot.ID).Int("tokens", len(tokens)).Msg("portfolio snapshot stored")

	return snapshot, nil
}

// Snapshots returns a page of snapshots, newest first
func (s *Service) Snapshots(_ context.Context, cursor *uint64, limit int) (*Page, error) {
	filters := []Filter{
		OrderByIDFilter{},
		PageFilter{Limit: normalizeLimit(limit)},
	}
	if cursor != nil {
		filters = append(filters, CursorFilter{Before: *cursor})
	}

	list, err := s.repo.GetByFilters(filters)
	if err != nil {
		return nil, fmt.Errorf("get snapshots: %w", err)
	}

	page := &Page{Snapshots: list}
	if len(list) > 0 {
		page.NextCursor = pointy.Uint64(list[len(list)-1].ID)
	}

	return page, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}

	if limit > MaxLimit {
		return MaxLimit
	}

	return limit
}
