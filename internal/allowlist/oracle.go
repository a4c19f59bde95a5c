package allowlist

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"github.com/ai-capital/ai-capital-backend/internal/chain"
)

const (
	methodWhitelist   = "whitelist"
	methodDeWhitelist = "deWhitelist"
)

type Contract interface {
	Call(ctx context.Context, method string, args ...any) ([]any, error)
	Transact(ctx context.Context, method string, args ...any) (*types.Receipt, error)
}

// Oracle reads and mutates the on-chain paid attempts counter.
type Oracle struct {
	contract Contract
}

func NewOracle(contract Contract) *Oracle {
	return &Oracle{contract: contract}
}

// Remaining returns the number of paid attempts left for the user.
func (o *Oracle) Remaining(ctx context.Context, user common.Address) (uint64, error) {
	out, err := o.contract.Call(ctx, methodWhitelist, user)
	if err != nil {
		return 0, fmt.Errorf("read whitelist: %w", err)
	}

	value, err := chain.Uint(out, 0)
	if err != nil {
		return 0, fmt.Errorf("read whitelist: %w", err)
	}

	if !value.IsUint64() {
		return 0, fmt.Errorf("read whitelist: %w: %s", chain.ErrUnexpectedValue, value)
	}

	return value.Uint64(), nil
}

// Revoke zeroes the counter and waits for the receipt.
func (o *Oracle) Revoke(ctx context.Context, user common.Address) error {
	receipt, err := o.contract.Transact(ctx, methodDeWhitelist, user)
	if err != nil {
		return fmt.Errorf("dewhitelist: %w", err)
	}

	log.Info().
		Str("user_address", user.Hex()).
		Str("tx", receipt.TxHash.Hex()).
		Msg("user dewhitelisted")

	return nil
}
