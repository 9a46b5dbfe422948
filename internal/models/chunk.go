package models

// ChunkType classifies the section of a company document a chunk was
// derived from. Retrieval prefers type coverage over raw similarity rank.
type ChunkType string

const (
	ChunkTypeRatios     ChunkType = "ratios"
	ChunkTypeFinancials ChunkType = "financials"
	ChunkTypeNews       ChunkType = "news"
	ChunkTypeEvents     ChunkType = "events"
)

// ChunkTypeOrder is the fixed rendering order for per-company summaries.
var ChunkTypeOrder = []ChunkType{
	ChunkTypeRatios,
	ChunkTypeFinancials,
	ChunkTypeNews,
	ChunkTypeEvents,
}

// Chunk is the unit of retrieval: a self-describing text block derived from
// one company document. Chunk text repeats the company name and ticker
// inline so it stays meaningful out of context, and never spans companies.
type Chunk struct {
	Text    string    `json:"text"`
	Type    ChunkType `json:"type"`
	Ticker  string    `json:"ticker"`
	Company string    `json:"company"`
}

// ScoredChunk pairs a chunk with its distance from a query embedding.
// Lower distance means more similar.
type ScoredChunk struct {
	Chunk    Chunk
	Distance float64
}
