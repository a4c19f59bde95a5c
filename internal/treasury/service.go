package treasury

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ai-capital/ai-capital-backend/internal/chain"
	"github.com/ai-capital/ai-capital-backend/pkg/sdk/coinmarketcap"
)

const nativeDecimals = 18

type BalanceReader interface {
	Call(ctx context.Context, method string, args ...any) ([]any, error)
}

type NativeReader interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

type QuoteProvider interface {
	GetQuotesLatest(ctx context.Context, symbols []string) (*coinmarketcap.QuotesLatest, error)
}

// Service values the fund contract holdings in USD
type Service struct {
	fund         BalanceReader
	native       NativeReader
	quotes       QuoteProvider
	fundAddress  common.Address
	tokens       []TokenSpec
	nativeSymbol string
}

func NewService(fund BalanceReader, native NativeReader, quotes QuoteProvider, fundAddress common.Address, tokens []TokenSpec, nativeSymbol string) *Service {
	return &Service{
		fund:         fund,
		native:       native,
		quotes:       quotes,
		fundAddress:  fundAddress,
		tokens:       tokens,
		nativeSymbol: nativeSymbol,
	}
}

func (s *Service) Report(ctx context.Context) (*Report, error) {
	var (
		balances []*big.Int
		native   *big.Int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addresses := make([]common.Address, 0, len(s.tokens))
		for _, t := range s.tokens {
			addresses = append(addresses, t.Address)
		}

		out, err := s.fund.Call(gctx, "getBalances", addresses)
		if err != nil {
			return fmt.Errorf("get balances: %w", err)
		}

		balances, err = chain.Uints(out, 0)
		if err != nil {
			return fmt.Errorf("get balances: %w", err)
		}

		if len(balances) != len(s.tokens) {
			return fmt.Errorf("get balances: %w: %d balances for %d tokens", chain.ErrUnexpectedValue, len(balances), len(s.tokens))
		}

		return nil
	})
	g.Go(func() error {
		var err error
		native, err = s.native.BalanceAt(gctx, s.fundAddress)
		if err != nil {
			return fmt.Errorf("get native balance: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	specs := append(append([]TokenSpec{}, s.tokens...), TokenSpec{Symbol: s.nativeSymbol, Decimals: nativeDecimals})
	amounts := append(append([]*big.Int{}, balances...), native)

	symbols := make([]string, 0, len(specs))
	for _, t := range specs {
		symbols = append(symbols, t.Symbol)
	}

	quotes, err := s.quotes.GetQuotesLatest(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("get quotes: %w", err)
	}

	report := &Report{
		TotalUSDValue: decimal.Zero,
		Tokens:        make([]Token, 0, len(specs)),
	}
	for i, spec := range specs {
		formatted := decimal.NewFromBigInt(amounts[i], -spec.Decimals)
		price := quotes.USDPrice(spec.Symbol)
		value := formatted.Mul(price)

		report.Tokens = append(report.Tokens, Token{
			Symbol:           spec.Symbol,
			Decimals:         spec.Decimals,
			Balance:          amounts[i].String(),
			BalanceFormatted: formatted,
			Price:            price,
			ValueUSD:         value,
		})
		report.TotalUSDValue = report.TotalUSDValue.Add(value)
	}

	return report, nil
}
