package tags

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Embedder is the slice of the embeddings client this package needs.
type Embedder interface {
	EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error)
}

// EmbeddingClassifier assigns tags by cosine similarity between a text's
// embedding and precomputed reference embeddings for every vocabulary tag.
// Ties on similarity break lexicographically on tag name so output never
// depends on storage iteration order.
type EmbeddingClassifier struct {
	embedder   Embedder
	vocabulary []string
	references [][]float32
	threshold  float32
}

// NewEmbeddingClassifier embeds the vocabulary once up front. Tags scoring
// at or above threshold against a text are returned by Classify.
func NewEmbeddingClassifier(ctx context.Context, embedder Embedder, vocabulary []string, threshold float32) (*EmbeddingClassifier, error) {
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("embedding classifier: empty vocabulary")
	}
	vocab := append([]string{}, vocabulary...)
	sort.Strings(vocab)

	refs, err := embedder.EmbedTexts(ctx, vocab)
	if err != nil {
		return nil, fmt.Errorf("embed vocabulary: %w", err)
	}
	if len(refs) != len(vocab) {
		return nil, fmt.Errorf("embed vocabulary: got %d vectors for %d tags", len(refs), len(vocab))
	}
	return &EmbeddingClassifier{
		embedder:   embedder,
		vocabulary: vocab,
		references: refs,
		threshold:  threshold,
	}, nil
}

// Classify returns tags whose reference embedding clears the similarity
// threshold, ordered by descending similarity then tag name.
func (c *EmbeddingClassifier) Classify(ctx context.Context, text string) ([]string, error) {
	vectors, err := c.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed text: no vector returned")
	}
	query := vectors[0]

	type scored struct {
		tag string
		sim float32
	}
	var hits []scored
	for i, tag := range c.vocabulary {
		sim := cosineSimilarity(query, c.references[i])
		if sim >= c.threshold {
			hits = append(hits, scored{tag: tag, sim: sim})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].sim != hits[j].sim {
			return hits[i].sim > hits[j].sim
		}
		return hits[i].tag < hits[j].tag
	})

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.tag)
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
