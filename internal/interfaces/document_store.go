package interfaces

import (
	"github.com/equityscope/equityscope/internal/models"
)

// DocumentStore reads scraped company documents from the filesystem.
// Documents are produced by the scraper and read-only from the indexing
// pipeline's perspective.
type DocumentStore interface {
	// List returns all parseable documents in lexicographic filename
	// order. Backup files and unparseable documents are skipped, never
	// fatal.
	List() ([]*models.CompanyDocument, error)

	// HasTicker reports whether a document exists for the bare ticker.
	HasTicker(ticker string) bool

	// Dir returns the directory the store reads from.
	Dir() string
}
