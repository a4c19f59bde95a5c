package treasury

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/ai-capital/ai-capital-backend/internal/chain"
)

var ErrTokenSpecMismatch = errors.New("treasury token addresses, symbols and decimals differ in length")

// TokenSpec is an ERC20 token held by the fund contract
type TokenSpec struct {
	Address  common.Address
	Symbol   string
	Decimals int32
}

type Token struct {
	Symbol           string
	Decimals         int32
	Balance          string
	BalanceFormatted decimal.Decimal
	Price            decimal.Decimal
	ValueUSD         decimal.Decimal
}

type Report struct {
	TotalUSDValue decimal.Decimal
	Tokens        []Token
}

func ParseTokenSpecs(addresses, symbols []string, decimals []int32) ([]TokenSpec, error) {
	if len(addresses) != len(symbols) || len(addresses) != len(decimals) {
		return nil, ErrTokenSpecMismatch
	}

	specs := make([]TokenSpec, 0, len(addresses))
	for i, raw := range addresses {
		addr, err := chain.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("token %s: %w", symbols[i], err)
		}

		specs = append(specs, TokenSpec{
			Address:  addr,
			Symbol:   symbols[i],
			Decimals: decimals[i],
		})
	}

	return specs, nil
}
