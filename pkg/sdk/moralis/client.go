package moralis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type (
	Client struct {
		client  *http.Client
		apiURL  string
		authKey string
	}
)

func NewClient(apiURL, authKey string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		client:  client,
		apiURL:  apiURL,
		authKey: authKey,
	}
}

// GetWalletTokens Get token balances with prices for the wallet on one chain
// see all parameters here: https://docs.moralis.io/web3-data-api/evm/reference/get-wallet-token-balances-price
func (c *Client) GetWalletTokens(ctx context.Context, address, chain string) (*WalletTokens, error) {
	var tokens WalletTokens
	err := c.get(ctx, fmt.Sprintf("wallets/%s/tokens", address), "wallet-tokens", map[string]string{
		"chain": chain,
	}, &tokens)
	if err != nil {
		return nil, err
	}

	return &tokens, nil
}

// GetWalletHistory Get the latest decoded transactions of the wallet, newest first
// see all parameters here: https://docs.moralis.io/web3-data-api/evm/reference/get-wallet-history
func (c *Client) GetWalletHistory(ctx context.Context, address, chain string) (*WalletHistory, error) {
	var history WalletHistory
	err := c.get(ctx, fmt.Sprintf("wallets/%s/history", address), "wallet-history", map[string]string{
		"chain": chain,
		"order": "DESC",
	}, &history)
	if err != nil {
		return nil, err
	}

	return &history, nil
}

func (c *Client) get(ctx context.Context, subURL, alias string, params map[string]string, out any) error {
	req, err := c.buildRequest(ctx, http.MethodGet, subURL, alias, params)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request do: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal body: %w", err)
	}

	return nil
}

func (c *Client) buildRequest(ctx context.Context, method, subURL, alias string, params map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		method,
		fmt.Sprintf("%s/%s", c.apiURL, subURL),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Add("alias", alias)
	req.Header.Add("Accept", "application/json")

	return c.withAuth(req), nil
}

func (c *Client) withAuth(req *http.Request) *http.Request {
	if c.authKey == "" {
		return req
	}

	req.Header.Add("X-API-Key", c.authKey)

	return req
}
