package chunker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/models"
)

const (
	// maxListItems caps the news and events items folded into a single chunk
	maxListItems = 5

	// Description caps keep a single verbose item from dominating a chunk's
	// embedding. Documents may come from sources other than the bundled
	// scraper, so the caps are enforced here regardless of origin.
	maxNewsDescription  = 500
	maxEventDescription = 300
)

// Service converts company documents into semantically grouped text chunks
// for embedding. Each document yields at most one chunk per chunk type, and
// sections absent from the document yield no chunk at all.
type Service struct {
	logger arbor.ILogger
}

func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Chunk builds chunks for every document in order. Document order is
// preserved, and within a document chunks follow the canonical type order
// (ratios, financials, news, events).
func (s *Service) Chunk(documents []*models.CompanyDocument) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(documents)*len(models.ChunkTypeOrder))

	for _, doc := range documents {
		before := len(chunks)
		chunks = append(chunks, s.chunkDocument(doc)...)

		s.logger.Debug().
			Str("ticker", doc.Ticker).
			Int("chunks", len(chunks)-before).
			Msg("Chunked company document")
	}

	return chunks
}

func (s *Service) chunkDocument(doc *models.CompanyDocument) []models.Chunk {
	company := doc.DisplayName()
	chunks := make([]models.Chunk, 0, len(models.ChunkTypeOrder))

	if text, ok := buildRatiosText(doc, company); ok {
		chunks = append(chunks, models.Chunk{
			Text:    text,
			Type:    models.ChunkTypeRatios,
			Ticker:  doc.Ticker,
			Company: company,
		})
	}

	if text, ok := buildFinancialsText(doc, company); ok {
		chunks = append(chunks, models.Chunk{
			Text:    text,
			Type:    models.ChunkTypeFinancials,
			Ticker:  doc.Ticker,
			Company: company,
		})
	}

	if text, ok := buildNewsText(doc, company); ok {
		chunks = append(chunks, models.Chunk{
			Text:    text,
			Type:    models.ChunkTypeNews,
			Ticker:  doc.Ticker,
			Company: company,
		})
	}

	if text, ok := buildEventsText(doc, company); ok {
		chunks = append(chunks, models.Chunk{
			Text:    text,
			Type:    models.ChunkTypeEvents,
			Ticker:  doc.Ticker,
			Company: company,
		})
	}

	return chunks
}

func chunkHeader(company, ticker string) string {
	return fmt.Sprintf("Company: %s (%s)\n", company, ticker)
}

// buildRatiosText folds the key ratios into a single overview chunk.
// Ratio names are sorted so the chunk text is stable across runs.
func buildRatiosText(doc *models.CompanyDocument, company string) (string, bool) {
	if len(doc.Ratios) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(chunkHeader(company, doc.Ticker))
	b.WriteString("Key Financial Ratios:\n")

	wrote := false
	for _, name := range sortedKeys(doc.Ratios) {
		value := doc.Ratios[name]
		if value == nil {
			continue
		}
		fmt.Fprintf(&b, "- %s: %v\n", name, value)
		wrote = true
	}

	if !wrote {
		return "", false
	}
	return b.String(), true
}

// buildFinancialsText folds the profit & loss table into a performance chunk
func buildFinancialsText(doc *models.CompanyDocument, company string) (string, bool) {
	if len(doc.ProfitLoss) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(chunkHeader(company, doc.Ticker))
	b.WriteString("Financial Performance:\n")

	for _, metric := range sortedKeys(doc.ProfitLoss) {
		yearsData := doc.ProfitLoss[metric]
		if len(yearsData) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", metric)
		for _, year := range sortedKeys(yearsData) {
			value := yearsData[year]
			if value == nil {
				continue
			}
			fmt.Fprintf(&b, "  %s: %v\n", year, value)
		}
	}

	return b.String(), true
}

func buildNewsText(doc *models.CompanyDocument, company string) (string, bool) {
	if len(doc.News) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(chunkHeader(company, doc.Ticker))
	b.WriteString("Recent News:\n")

	items := doc.News
	if len(items) > maxListItems {
		items = items[:maxListItems]
	}

	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s", item.Title)
		if item.Date != "" {
			fmt.Fprintf(&b, " (%s)", item.Date)
		}
		if item.Description != "" {
			fmt.Fprintf(&b, "\n  %s\n", truncateText(item.Description, maxNewsDescription))
		}
	}

	return b.String(), true
}

// buildEventsText merges events and announcements into one chunk, events first
func buildEventsText(doc *models.CompanyDocument, company string) (string, bool) {
	if len(doc.Events) == 0 && len(doc.Announcements) == 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(chunkHeader(company, doc.Ticker))
	b.WriteString("Corporate Events & Announcements:\n")

	items := make([]models.EventItem, 0, len(doc.Events)+len(doc.Announcements))
	items = append(items, doc.Events...)
	items = append(items, doc.Announcements...)
	if len(items) > maxListItems {
		items = items[:maxListItems]
	}

	for _, item := range items {
		fmt.Fprintf(&b, "\n- %s", item.Title)
		if item.Date != "" {
			fmt.Fprintf(&b, " (%s)", item.Date)
		}
		if item.Type != "" {
			fmt.Fprintf(&b, " [Type: %s]", item.Type)
		}
		if item.Description != "" {
			fmt.Fprintf(&b, "\n  %s\n", truncateText(item.Description, maxEventDescription))
		}
	}

	return b.String(), true
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
