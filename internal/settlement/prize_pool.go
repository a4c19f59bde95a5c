package settlement

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	methodSwapTokens = "_swapTokens"
	methodTransfer   = "transfer"
)

type Contract interface {
	Transact(ctx context.Context, method string, args ...any) (*types.Receipt, error)
}

type PrizePool struct {
	contract Contract
}

func NewPrizePool(c Contract) *PrizePool {
	return &PrizePool{contract: c}
}

// SwapTokens moves percent of the sell token position into the buy token.
func (p *PrizePool) SwapTokens(ctx context.Context, user, sell, buy common.Address, percent uint64) error {
	_, err := p.contract.Transact(ctx, methodSwapTokens, user, sell, buy, new(big.Int).SetUint64(percent))

	return err
}

func (p *PrizePool) Transfer(ctx context.Context, receiver common.Address) error {
	_, err := p.contract.Transact(ctx, methodTransfer, receiver)

	return err
}
