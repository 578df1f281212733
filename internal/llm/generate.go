package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
)

// GenerationClient answers prompts via a local ollama model.
type GenerationClient struct {
	model string
	llm   *ollama.LLM
	to    time.Duration
	log   logging.Logger
}

// NewGenerationClient builds a generation client for the given server and
// model.
func NewGenerationClient(baseURL, model string, timeout time.Duration, log logging.Logger) (*GenerationClient, error) {
	if model == "" {
		return nil, fmt.Errorf("llm model name is required")
	}
	opts := []ollama.Option{
		ollama.WithModel(model),
		ollama.WithKeepAlive("5m"),
	}
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		opts = append(opts, ollama.WithServerURL(trimmed))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &GenerationClient{model: model, llm: client, to: timeout, log: log}, nil
}

// Generate runs a single-shot completion. No streaming; the caller gets the
// full answer or an error, never a partial synthesis.
func (c *GenerationClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	c.log.Debug("generating answer", "model", c.model, "prompt_tokens", EstimateTokens(prompt))

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", c.annotateError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty generation response")
	}
	return resp.Choices[0].Content, nil
}

func (c *GenerationClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.to)
}

func (c *GenerationClient) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("llm call timed out after %s: %w", c.to, err)
	}
	return err
}
