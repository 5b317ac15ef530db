// Package openai provides an answer generator backed by the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"voiceqa-platform/internal/answer"
)

var _ answer.Generator = (*Generator)(nil)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.2
	defaultMaxTokens   = 300
)

// Generator implements answer.Generator using OpenAI chat completions.
type Generator struct {
	client      oai.Client
	model       string
	temperature float64
	maxTokens   int64
}

// config holds optional configuration for the generator.
type config struct {
	baseURL   string
	timeout   time.Duration
	maxTokens int64
}

// Option is a functional option for Generator.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithMaxTokens bounds the generated answer length.
func WithMaxTokens(n int64) Option {
	return func(c *config) {
		c.maxTokens = n
	}
}

// New constructs a new OpenAI-backed Generator.
func New(apiKey string, model string, opts ...Option) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("openai: apiKey must not be empty")
	}
	if model == "" {
		model = defaultModel
	}

	cfg := &config{maxTokens: defaultMaxTokens}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Generator{
		client:      oai.NewClient(reqOpts...),
		model:       model,
		temperature: defaultTemperature,
		maxTokens:   cfg.maxTokens,
	}, nil
}

// Answer implements answer.Generator.
func (g *Generator) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("openai: question must not be empty")
	}

	resp, err := g.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(answer.SystemPrompt),
			oai.UserMessage(question),
		},
		Temperature:         param.NewOpt(g.temperature),
		MaxCompletionTokens: param.NewOpt(g.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("openai: empty answer text")
	}
	return text, nil
}
