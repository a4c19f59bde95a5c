package allowlist

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ai-capital/ai-capital-backend/internal/chain"
)

type contractMock struct {
	mock.Mock
}

func (m *contractMock) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	ret := m.Called(ctx, method, args)

	out, _ := ret.Get(0).([]any)
	return out, ret.Error(1)
}

func (m *contractMock) Transact(ctx context.Context, method string, args ...any) (*types.Receipt, error) {
	ret := m.Called(ctx, method, args)

	receipt, _ := ret.Get(0).(*types.Receipt)
	return receipt, ret.Error(1)
}

var (
	user   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	errRPC = errors.New("connection refused")
)

func TestUnitRemaining(t *testing.T) {
	for name, tc := range map[string]struct {
		out       []any
		callErr   error
		expected  uint64
		expectErr error
	}{
		"paid":         {out: []any{big.NewInt(2)}, expected: 2},
		"unpaid":       {out: []any{big.NewInt(0)}, expected: 0},
		"rpc failure":  {callErr: errRPC, expectErr: errRPC},
		"wrong output": {out: []any{true}, expectErr: chain.ErrUnexpectedValue},
		"overflow":     {out: []any{new(big.Int).Lsh(big.NewInt(1), 80)}, expectErr: chain.ErrUnexpectedValue},
	} {
		t.Run(name, func(t *testing.T) {
			m := &contractMock{}
			m.On("Call", mock.Anything, "whitelist", []any{user}).Return(tc.out, tc.callErr).Once()

			remaining, err := NewOracle(m).Remaining(context.Background(), user)
			m.AssertExpectations(t)

			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, remaining)
		})
	}
}

func TestUnitRevoke(t *testing.T) {
	m := &contractMock{}
	m.On("Transact", mock.Anything, "deWhitelist", []any{user}).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil).Once()

	require.NoError(t, NewOracle(m).Revoke(context.Background(), user))
	m.AssertExpectations(t)
}

func TestUnitRevokeReverted(t *testing.T) {
	m := &contractMock{}
	m.On("Transact", mock.Anything, "deWhitelist", []any{user}).Return(nil, chain.ErrTxReverted).Once()

	err := NewOracle(m).Revoke(context.Background(), user)
	require.ErrorIs(t, err, chain.ErrTxReverted)
	m.AssertExpectations(t)
}
