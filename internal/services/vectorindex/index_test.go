package vectorindex

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/models"
)

// stubEmbedder maps chunk text to fixed vectors for deterministic tests
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vec, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return vec, nil
}

func testChunks() []models.Chunk {
	return []models.Chunk{
		{Text: "alpha", Type: models.ChunkTypeRatios, Ticker: "TCS", Company: "TCS"},
		{Text: "beta", Type: models.ChunkTypeNews, Ticker: "TCS", Company: "TCS"},
		{Text: "gamma", Type: models.ChunkTypeRatios, Ticker: "INFY", Company: "Infosys"},
	}
}

func builtSnapshot(t *testing.T) *Snapshot {
	t.Helper()

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
		"gamma": {0, 0, 1},
	}}

	builder := NewBuilder(embedder, arbor.NewLogger())
	snapshot, err := builder.Build(context.Background(), testChunks(), "fp-1")
	require.NoError(t, err)
	return snapshot
}

func TestBuild(t *testing.T) {
	t.Log("=== Testing Index Build ===")

	snapshot := builtSnapshot(t)

	assert.Equal(t, 3, snapshot.Len())
	assert.Equal(t, "fp-1", snapshot.Fingerprint)
	assert.False(t, snapshot.BuiltAt.IsZero())
	require.Len(t, snapshot.Vectors, 3)
	assert.Equal(t, []float32{0, 1, 0}, snapshot.Vectors[1])

	t.Log("✅ Snapshot carries parallel chunks and vectors with fingerprint")
}

func TestBuild_EmbedFailureAborts(t *testing.T) {
	embedder := &stubEmbedder{err: fmt.Errorf("quota exceeded")}
	builder := NewBuilder(embedder, arbor.NewLogger())

	snapshot, err := builder.Build(context.Background(), testChunks(), "fp-1")
	require.Error(t, err)
	assert.Nil(t, snapshot)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := NewBuilder(&stubEmbedder{vectors: map[string][]float32{}}, arbor.NewLogger())
	_, err := builder.Build(ctx, testChunks(), "fp-1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearch_OrdersByDistance(t *testing.T) {
	t.Log("=== Testing Nearest-Neighbor Search ===")

	snapshot := builtSnapshot(t)

	// Query closest to "beta", then equidistant from "alpha" and "gamma"
	results := snapshot.Search([]float32{0, 0.9, 0}, 3)
	require.Len(t, results, 3)

	assert.Equal(t, 1, results[0].Index)
	assert.InDelta(t, 0.01, results[0].Distance, 1e-6)
	assert.Less(t, results[0].Distance, results[1].Distance)
	// Tie between indexes 0 and 2 resolves by chunk position
	assert.Equal(t, 0, results[1].Index)
	assert.Equal(t, 2, results[2].Index)

	t.Log("✅ Results ascend by squared L2 distance with positional tie-break")
}

func TestSearch_CapsAtK(t *testing.T) {
	snapshot := builtSnapshot(t)

	results := snapshot.Search([]float32{1, 0, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Index)
}

func TestSearch_EmptyAndInvalidInputs(t *testing.T) {
	snapshot := builtSnapshot(t)

	assert.Nil(t, snapshot.Search(nil, 3))
	assert.Nil(t, snapshot.Search([]float32{1, 0, 0}, 0))

	var empty *Snapshot
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Search([]float32{1}, 3))
}

func TestSearch_SkipsDimensionMismatch(t *testing.T) {
	snapshot := builtSnapshot(t)
	snapshot.Vectors[2] = []float32{1, 2} // corrupted entry

	results := snapshot.Search([]float32{0, 0, 1}, 3)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, 2, r.Index)
	}
}
