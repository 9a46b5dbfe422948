package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
	"github.com/equityscope/equityscope/internal/services/chunker"
	"github.com/equityscope/equityscope/internal/services/freshness"
	"github.com/equityscope/equityscope/internal/services/vectorindex"
)

const (
	noDataMessage   = "No data available. Please ensure data scraping has been completed."
	contextHeader   = "=== RELEVANT COMPANY DATA ===\n\n"
	noMatchFormat   = "No relevant information found for the query: %s"
	summaryHeader   = "=== COMPREHENSIVE DATA FOR %s ===\n\n"
	noSummaryFormat = "No data found for %s"

	// searchOverfetch widens the raw search so ticker filtering and type
	// diversity still have k candidates to pick from
	searchOverfetch = 3
)

// Service answers retrieval requests over the scraped document corpus. It
// serves from an immutable snapshot swapped atomically on rebuild, so
// searches never observe a half-built index. When auto-refresh is enabled,
// every read first checks the corpus fingerprint and rebuilds if documents
// changed on disk.
type Service struct {
	store       interfaces.DocumentStore
	chunker     *chunker.Service
	builder     *vectorindex.Builder
	tracker     *freshness.Tracker
	embedder    vectorindex.Embedder
	autoRefresh bool
	logger      arbor.ILogger

	snapshot  atomic.Pointer[vectorindex.Snapshot]
	rebuildMu sync.Mutex
}

func NewService(
	store interfaces.DocumentStore,
	chunkService *chunker.Service,
	builder *vectorindex.Builder,
	tracker *freshness.Tracker,
	embedder vectorindex.Embedder,
	autoRefresh bool,
	logger arbor.ILogger,
) *Service {
	return &Service{
		store:       store,
		chunker:     chunkService,
		builder:     builder,
		tracker:     tracker,
		embedder:    embedder,
		autoRefresh: autoRefresh,
		logger:      logger,
	}
}

// Rebuild re-reads the corpus, re-chunks, re-embeds, and atomically swaps
// in the new snapshot. Concurrent callers serialize; the second caller
// re-checks staleness under the lock and skips the duplicate build.
func (s *Service) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	stale, fingerprint, err := s.tracker.NeedsRebuild()
	if err != nil {
		return fmt.Errorf("failed to check corpus freshness: %w", err)
	}
	if !stale && s.snapshot.Load() != nil {
		return nil
	}

	documents, err := s.store.List()
	if err != nil {
		return fmt.Errorf("failed to list documents for indexing: %w", err)
	}

	chunks := s.chunker.Chunk(documents)

	snapshot, err := s.builder.Build(ctx, chunks, fingerprint)
	if err != nil {
		return fmt.Errorf("failed to build vector index: %w", err)
	}

	s.snapshot.Store(snapshot)
	s.tracker.MarkBuilt(fingerprint)

	s.logger.Info().
		Int("documents", len(documents)).
		Int("chunks", len(chunks)).
		Int("companies", len(uniqueTickers(chunks))).
		Msg("Retrieval index refreshed")

	return nil
}

// ensureFresh rebuilds the index if auto-refresh is on and the corpus
// changed, or if no snapshot has ever been built.
func (s *Service) ensureFresh(ctx context.Context) error {
	if s.snapshot.Load() == nil {
		return s.Rebuild(ctx)
	}
	if !s.autoRefresh {
		return nil
	}

	stale, _, err := s.tracker.NeedsRebuild()
	if err != nil {
		return fmt.Errorf("failed to check corpus freshness: %w", err)
	}
	if !stale {
		return nil
	}
	return s.Rebuild(ctx)
}

// GetContext retrieves up to k chunks relevant to the query, preferring
// diverse chunk types, and formats them into a context block for the LLM
// prompt. filterTicker restricts results to one company when non-empty.
func (s *Service) GetContext(ctx context.Context, query string, k int, filterTicker string) (string, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return "", err
	}

	snapshot := s.snapshot.Load()
	if snapshot.Len() == 0 {
		return noDataMessage, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	// Overfetch so ticker filtering and type diversity have candidates to
	// choose from
	searchK := k * searchOverfetch
	if searchK > snapshot.Len() {
		searchK = snapshot.Len()
	}
	results := snapshot.Search(queryVec, searchK)

	filterBare := common.BareTicker(filterTicker)
	selected := make([]models.ScoredChunk, 0, k)
	seenTypes := make(map[models.ChunkType]bool)

	for _, result := range results {
		chunk := snapshot.Chunks[result.Index]

		if filterBare != "" && common.BareTicker(chunk.Ticker) != filterBare {
			continue
		}

		if len(selected) < k || !seenTypes[chunk.Type] {
			selected = append(selected, models.ScoredChunk{
				Chunk:    chunk,
				Distance: float64(result.Distance),
			})
			seenTypes[chunk.Type] = true
		}

		if len(selected) >= k {
			break
		}
	}

	if len(selected) == 0 {
		return fmt.Sprintf(noMatchFormat, query), nil
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	for _, scored := range selected {
		fmt.Fprintf(&b, "--- %s (%s) - %s ---\n", scored.Chunk.Company, scored.Chunk.Ticker, titleChunkType(scored.Chunk.Type))
		b.WriteString(scored.Chunk.Text)
		fmt.Fprintf(&b, "\n[Similarity Score: %.3f]\n\n", scored.Distance)
	}

	return strings.TrimSpace(b.String()), nil
}

// GetCompanySummary returns every chunk for one company grouped in
// canonical type order.
func (s *Service) GetCompanySummary(ctx context.Context, ticker string) (string, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return "", err
	}

	snapshot := s.snapshot.Load()
	bare := common.BareTicker(ticker)

	byType := make(map[models.ChunkType][]string)
	for _, chunk := range snapshot.Chunks {
		if common.BareTicker(chunk.Ticker) == bare {
			byType[chunk.Type] = append(byType[chunk.Type], chunk.Text)
		}
	}

	if len(byType) == 0 {
		return fmt.Sprintf(noSummaryFormat, ticker), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, summaryHeader, ticker)
	for _, chunkType := range models.ChunkTypeOrder {
		for _, text := range byType[chunkType] {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// AvailableTickers returns the sorted set of tickers present in the index
func (s *Service) AvailableTickers(ctx context.Context) ([]string, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	snapshot := s.snapshot.Load()
	return uniqueTickers(snapshot.Chunks), nil
}

func uniqueTickers(chunks []models.Chunk) []string {
	seen := make(map[string]bool)
	tickers := make([]string, 0)
	for _, chunk := range chunks {
		if !seen[chunk.Ticker] {
			seen[chunk.Ticker] = true
			tickers = append(tickers, chunk.Ticker)
		}
	}
	sort.Strings(tickers)
	return tickers
}

func titleChunkType(t models.ChunkType) string {
	name := string(t)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

var _ interfaces.Retriever = (*Service)(nil)
