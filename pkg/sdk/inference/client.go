package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrModelLoading is returned while the hosted model is warming up.
	ErrModelLoading = errors.New("model is loading")
)

type (
	Client struct {
		client   *http.Client
		modelURL string
		authKey  string
	}
)

func NewClient(modelURL, authKey string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		client:   client,
		modelURL: modelURL,
		authKey:  authKey,
	}
}

// Classify runs text classification on the hosted model
// see all parameters here: https://huggingface.co/docs/api-inference/tasks/text-classification
func (c *Client) Classify(ctx context.Context, text string, waitForModel bool) ([]Label, error) {
	payload := ClassificationRequest{Inputs: text}
	if waitForModel {
		payload.Options = &Options{WaitForModel: true}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Add("alias", "text-classification")
	req.Header.Add("Content-Type", "application/json")
	if c.authKey != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.authKey))
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

	if resp.StatusCode == http.StatusServiceUnavailable {
		var details errorResponse
		_ = json.Unmarshal(body, &details)

		return nil, fmt.Errorf("%w: %s", ErrModelLoading, details.Error)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	return parseLabels(body)
}

// parseLabels accepts both the batched [[...]] and the flat [...] layouts.
func parseLabels(body []byte) ([]Label, error) {
	var batched [][]Label
	if err := json.Unmarshal(body, &batched); err == nil {
		if len(batched) == 0 {
			return nil, errors.New("empty classification response")
		}

		return batched[0], nil
	}

	var flat []Label
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}

	return flat, nil
}
