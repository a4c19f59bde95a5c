package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ai-capital/ai-capital-backend/internal/metrics"
)

type Params struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Pitch is the user submission forwarded to the model
type Pitch struct {
	Token      string `json:"token"`
	TradeType  string `json:"tradeType"`
	Allocation string `json:"allocation"`
	Text       string `json:"pitch"`
}

type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIClient struct {
	client ChatCompleter
	params Params
}

func NewAIClient(client ChatCompleter, params Params) *AIClient {
	return &AIClient{
		client: client,
		params: params,
	}
}

// NewOpenAIClient builds the chat client, baseURL is optional
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = metrics.NewHTTPClient("open_ai", 0)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(cfg)
}

// Judge asks the persona for a verdict. Transport failures are returned as
// errors, malformed replies are reported through Result.ParseErr.
func (c *AIClient) Judge(ctx context.Context, pitch Pitch, injectionNote string) (Result, error) {
	content, err := json.Marshal(pitch)
	if err != nil {
		return Result{}, fmt.Errorf("marshal pitch: %w", err)
	}

	reply, err := c.do(ctx, systemPrompt(injectionNote), string(content))
	if err != nil {
		return Result{}, err
	}

	return NewResult(reply), nil
}

// do make request to the ChatGPT with persona and user message
func (c *AIClient) do(ctx context.Context, system, user string) (string, error) {
	var err error
	defer func(start time.Time) {
		metrics.CollectRequestsMetric("open_ai", "create_chat_completion", err, start)
	}(time.Now())

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.params.Model,
			Temperature: c.params.Temperature,
			MaxTokens:   c.params.MaxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: user,
				},
			},
		},
	)

	if err != nil {
		return "", fmt.Errorf("openai.CreateChatCompletion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
