package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
)

var (
	ErrReadOnly        = errors.New("backend wallet is not configured")
	ErrTxReverted      = errors.New("transaction reverted")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrUnexpectedValue = errors.New("unexpected contract output")
)

// Backend is the subset of ethclient used by bound contracts and receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type Client struct {
	backend Backend
	key     *ecdsa.PrivateKey
	chainID *big.Int

	// serializes nonce allocation of the backend wallet
	sendMu sync.Mutex
}

func Dial(ctx context.Context, rpcURL string, chainID int64, privateKey string) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	return NewClient(ec, chainID, privateKey)
}

// NewClient builds a client over any backend. An empty private key yields a
// read-only client.
func NewClient(backend Backend, chainID int64, privateKey string) (*Client, error) {
	c := &Client{
		backend: backend,
		chainID: big.NewInt(chainID),
	}

	if privateKey == "" {
		return c, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	c.key = key

	return c, nil
}

func (c *Client) Address() common.Address {
	if c.key == nil {
		return common.Address{}
	}

	return crypto.PubkeyToAddress(c.key.PublicKey)
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.backend.BalanceAt(ctx, account, nil)
}

func (c *Client) Contract(name string, address common.Address, parsed abi.ABI) *Contract {
	return &Contract{
		name:   name,
		client: c,
		bound:  bind.NewBoundContract(address, parsed, c.backend, c.backend, c.backend),
	}
}

func (c *Client) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	if c.key == nil {
		return nil, ErrReadOnly
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("keyed transactor: %w", err)
	}
	opts.Context = ctx

	return opts, nil
}

type Contract struct {
	name   string
	client *Client
	bound  *bind.BoundContract
}

// Call executes a read-only method against the latest block.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	var out []any
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}

	return out, nil
}

// Transact sends a state-changing method and waits until it is mined.
// A mined transaction with failed status returns ErrTxReverted.
func (c *Contract) Transact(ctx context.Context, method string, args ...any) (*types.Receipt, error) {
	tx, err := c.send(ctx, method, args...)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("contract", c.name).
		Str("method", method).
		Str("tx", tx.Hash().Hex()).
		Msg("transaction sent")

	receipt, err := bind.WaitMined(ctx, c.client.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: wait mined %s: %w", c.name, method, tx.Hash().Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%s.%s: %w: %s", c.name, method, ErrTxReverted, tx.Hash().Hex())
	}

	return receipt, nil
}

func (c *Contract) send(ctx context.Context, method string, args ...any) (*types.Transaction, error) {
	opts, err := c.client.transactor(ctx)
	if err != nil {
		return nil, err
	}

	c.client.sendMu.Lock()
	defer c.client.sendMu.Unlock()

	tx, err := c.bound.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}

	return tx, nil
}

// ParseAddress accepts only 0x prefixed 20 byte hex addresses.
func ParseAddress(raw string) (common.Address, error) {
	if !strings.HasPrefix(raw, "0x") || !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}

	return common.HexToAddress(raw), nil
}

// Uint reads the n-th output of a call as an unsigned integer.
func Uint(out []any, n int) (*big.Int, error) {
	if len(out) <= n {
		return nil, fmt.Errorf("%w: %d outputs", ErrUnexpectedValue, len(out))
	}

	v, ok := out[n].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedValue, out[n])
	}

	return v, nil
}

// Uints reads the n-th output of a call as a list of unsigned integers.
func Uints(out []any, n int) ([]*big.Int, error) {
	if len(out) <= n {
		return nil, fmt.Errorf("%w: %d outputs", ErrUnexpectedValue, len(out))
	}

	v, ok := out[n].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedValue, out[n])
	}

	return v, nil
}
