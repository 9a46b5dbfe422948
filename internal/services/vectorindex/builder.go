package vectorindex

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/models"
)

// Embedder is the slice of the LLM service the builder needs
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Builder turns a chunked corpus into a searchable snapshot by embedding
// every chunk through the configured embedding provider.
type Builder struct {
	embedder Embedder
	logger   arbor.ILogger
}

func NewBuilder(embedder Embedder, logger arbor.ILogger) *Builder {
	return &Builder{
		embedder: embedder,
		logger:   logger,
	}
}

// Build embeds all chunks and assembles an immutable snapshot stamped with
// the corpus fingerprint. Any single embedding failure aborts the build; a
// partially embedded index would silently drop chunks from retrieval.
func (b *Builder) Build(ctx context.Context, chunks []models.Chunk, fingerprint string) (*Snapshot, error) {
	start := time.Now()

	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("index build cancelled after %d of %d chunks: %w", i, len(chunks), err)
		}

		vec, err := b.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d (%s/%s): %w", i, chunk.Ticker, chunk.Type, err)
		}
		vectors = append(vectors, vec)
	}

	snapshot := &Snapshot{
		Chunks:      chunks,
		Vectors:     vectors,
		Fingerprint: fingerprint,
		BuiltAt:     time.Now(),
	}

	b.logger.Info().
		Int("chunks", len(chunks)).
		Str("fingerprint", truncateFingerprint(fingerprint)).
		Dur("duration", time.Since(start)).
		Msg("Vector index built")

	return snapshot, nil
}

func truncateFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
