// Package llm wraps the OpenAI chat completion API behind a single
// prompt-in, text-out call.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sashabaranov/go-openai"

	"learninghour/internal/errdefs"
	"learninghour/internal/logging"
	"learninghour/internal/metrics"
)

const (
	DefaultModel     = openai.GPT4o
	defaultMaxTokens = 4000
	serviceName      = "openai"
)

// Options configures a Client. An empty APIKey leaves the client unusable
// until first use reports it.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     logging.Logger
	Metrics    *metrics.Metrics
}

type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	hasKey    bool
	logger    logging.Logger
	metrics   *metrics.Metrics
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	c := &Client{
		client:    openai.NewClientWithConfig(cfg),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		hasKey:    opts.APIKey != "",
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// Model returns the chat model requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the reply text.
// The reply is requested as a JSON object.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.hasKey {
		return "", errdefs.NotConfigured("LLM integration not configured: set OPENAI_API_KEY")
	}

	started := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.metrics.ObserveUpstream(serviceName, "chat_completion", errorStatus(err), started)
		return "", errdefs.Upstream("chat completion", err)
	}
	c.metrics.ObserveUpstream(serviceName, "chat_completion", "200", started)

	if len(resp.Choices) == 0 {
		return "", errdefs.Upstream("chat completion", errors.New("no choices returned"))
	}

	c.logger.Debug("chat completion finished",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

func errorStatus(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return strconv.Itoa(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return strconv.Itoa(reqErr.HTTPStatusCode)
	}
	return "error"
}
