// Package llm wraps the two ollama-backed collaborators of the query
// engine: the embeddings client used for indexing and semantic retrieval,
// and the generation client used for answer synthesis.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/debaditya-mohankudo/prmailhub/internal/logging"
)

// EmbeddingsClient produces fixed-length vectors for text via ollama.
type EmbeddingsClient struct {
	model string
	llm   *ollama.LLM
	to    time.Duration
	log   logging.Logger
}

// NewEmbeddingsClient builds an embeddings client for the given server and
// model. A zero timeout disables per-call deadlines.
func NewEmbeddingsClient(baseURL, model string, timeout time.Duration, log logging.Logger) (*EmbeddingsClient, error) {
	if model == "" {
		return nil, fmt.Errorf("embedding model name is required")
	}
	opts := []ollama.Option{ollama.WithModel(model)}
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		opts = append(opts, ollama.WithServerURL(trimmed))
	}
	opts = append(opts, ollama.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &EmbeddingsClient{model: model, llm: client, to: timeout, log: log}, nil
}

// EmbedTexts embeds a batch of inputs, preserving input order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided for embedding")
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	vectors, err := c.llm.CreateEmbedding(ctx, inputs)
	if err != nil {
		annotated := c.annotateError(err)
		c.log.Error(annotated, "embedding failed", "model", c.model, "inputs", len(inputs), "elapsed", time.Since(start).String())
		return nil, fmt.Errorf("create embedding: %w", annotated)
	}
	c.log.Debug("embedded inputs", "model", c.model, "inputs", len(vectors), "elapsed", time.Since(start).String())
	return vectors, nil
}

func (c *EmbeddingsClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.to)
}

func (c *EmbeddingsClient) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("embedding call timed out after %s: %w", c.to, err)
	}
	return err
}
