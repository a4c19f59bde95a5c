package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
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

// GetQuotesLatest returns latest USD quotes for provided symbols
// see all parameters here: https://coinmarketcap.com/api/documentation/v1/#operation/getV1CryptocurrencyQuotesLatest
func (c *Client) GetQuotesLatest(ctx context.Context, symbols []string) (*QuotesLatest, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/cryptocurrency/quotes/latest", c.apiURL),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	q := req.URL.Query()
	q.Add("symbol", strings.Join(symbols, ","))
	req.URL.RawQuery = q.Encode()

	req.Header.Add("alias", "quotes-latest")
	req.Header.Add("Accept", "application/json")
	if c.authKey != "" {
		req.Header.Add("X-CMC_PRO_API_KEY", c.authKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request do: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var quotes QuotesLatest
	if err = json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}

	return &quotes, nil
}
