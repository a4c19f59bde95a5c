package moralis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnitGetWalletTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wallets/0xabc/tokens", r.URL.Path)
		require.Equal(t, "base", r.URL.Query().Get("chain"))
		require.Equal(t, "secret", r.Header.Get("X-API-Key"))

		_, _ = w.Write([]byte(`{"result":[{"token_address":"0x1","symbol":"USDC","decimals":6,"usd_value":12.5}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", nil)
	resp, err := client.GetWalletTokens(context.Background(), "0xabc", "base")
	require.NoError(t, err)
	require.Len(t, resp.Result, 1)
	require.Equal(t, "USDC", resp.Result[0].Symbol)
	require.Equal(t, 12.5, resp.Result[0].USDValue)
}

func TestUnitGetWalletTokensBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", nil)
	_, err := client.GetWalletTokens(context.Background(), "0xabc", "base")
	require.Error(t, err)
}

func TestUnitGetWalletHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wallets/0xabc/history", r.URL.Path)
		require.Equal(t, "optimism", r.URL.Query().Get("chain"))
		require.Equal(t, "DESC", r.URL.Query().Get("order"))
		require.Equal(t, "secret", r.Header.Get("X-API-Key"))

		_, _ = w.Write([]byte(`{"cursor":"next","page_size":100,"result":[{"hash":"0xdead","category":"token swap","summary":"Swapped 1 USDC for 0.0004 ETH","erc20_transfers":[{"token_symbol":"USDC","value_formatted":"1","direction":"send"}]}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", nil)
	resp, err := client.GetWalletHistory(context.Background(), "0xabc", "optimism")
	require.NoError(t, err)
	require.Equal(t, "next", resp.Cursor)
	require.Len(t, resp.Result, 1)
	require.Equal(t, "token swap", resp.Result[0].Category)
	require.Equal(t, "USDC", resp.Result[0].ERC20Transfers[0].TokenSymbol)
}
