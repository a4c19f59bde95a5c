package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// PrizePoolABI covers the allow-list counter and the settlement entry points.
const PrizePoolABI = `[
	{"type":"function","name":"whitelist","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decWhitelist","stateMutability":"nonpayable","inputs":[{"name":"_user","type":"address"}],"outputs":[]},
	{"type":"function","name":"deWhitelist","stateMutability":"nonpayable","inputs":[{"name":"_user","type":"address"}],"outputs":[]},
	{"type":"function","name":"_swapTokens","stateMutability":"nonpayable","inputs":[{"name":"_user","type":"address"},{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"percent","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"_receiver","type":"address"}],"outputs":[]}
]`

// FundABI is the read-only surface of the fund contract holding the treasury.
const FundABI = `[
	{"type":"function","name":"getBalances","stateMutability":"view","inputs":[{"name":"tokens","type":"address[]"}],"outputs":[{"name":"","type":"uint256[]"}]}
]`

func ParseABI(raw string) (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}

	return parsed, nil
}
