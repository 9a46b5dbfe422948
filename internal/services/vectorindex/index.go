package vectorindex

import (
	"sort"
	"time"

	"github.com/equityscope/equityscope/internal/models"
)

// Snapshot is an immutable in-memory vector index built over one pass of the
// document corpus. Chunks and Vectors are parallel slices; position i of
// Vectors embeds position i of Chunks. Snapshots are never mutated after
// Build, so readers can search without locking while a rebuild prepares a
// replacement.
type Snapshot struct {
	Chunks      []models.Chunk
	Vectors     [][]float32
	Fingerprint string
	BuiltAt     time.Time
}

// SearchResult pairs a chunk position with its squared L2 distance from the
// query. Lower distance means more similar.
type SearchResult struct {
	Index    int
	Distance float32
}

// Len returns the number of indexed chunks
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Chunks)
}

// Search performs an exact nearest-neighbor scan, returning up to k results
// ordered by ascending squared L2 distance. Ties are broken by chunk
// position so results are deterministic. An empty snapshot, nil query, or
// non-positive k yields no results.
func (s *Snapshot) Search(query []float32, k int) []SearchResult {
	if s.Len() == 0 || len(query) == 0 || k <= 0 {
		return nil
	}

	results := make([]SearchResult, 0, len(s.Vectors))
	for i, vec := range s.Vectors {
		if len(vec) != len(query) {
			continue
		}
		results = append(results, SearchResult{
			Index:    i,
			Distance: squaredL2(query, vec),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
