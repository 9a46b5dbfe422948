package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
)

// Service reads scraped company documents from a directory of JSON files.
// One file per ticker, named {TICKER}.json; rotated backups carry a
// _backup_{timestamp} suffix and are never listed.
type Service struct {
	dir    string
	logger arbor.ILogger
}

// NewService creates a document store over the configured documents directory.
// The directory is created if it does not exist so first-run scraping has a
// place to write.
func NewService(config *common.Config, logger arbor.ILogger) (*Service, error) {
	dir := config.Storage.Documents.Dir
	if dir == "" {
		return nil, fmt.Errorf("documents directory is not configured")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory %s: %w", dir, err)
	}

	logger.Info().
		Str("dir", dir).
		Msg("Document store initialized")

	return &Service{
		dir:    dir,
		logger: logger,
	}, nil
}

// List returns all parseable company documents in deterministic
// (lexicographic filename) order. Backup files and files that fail to parse
// are skipped; a parse failure is logged, never fatal.
func (s *Service) List() ([]*models.CompanyDocument, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isDocumentFile(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	documents := make([]*models.CompanyDocument, 0, len(names))
	for _, name := range names {
		path := filepath.Join(s.dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("file", name).
				Msg("Skipping unreadable document file")
			continue
		}

		var doc models.CompanyDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Warn().
				Err(err).
				Str("file", name).
				Msg("Skipping malformed document file")
			continue
		}

		if doc.Ticker == "" {
			doc.Ticker = strings.TrimSuffix(name, filepath.Ext(name))
		}

		documents = append(documents, &doc)
	}

	s.logger.Debug().
		Int("count", len(documents)).
		Msg("Listed company documents")

	return documents, nil
}

// HasTicker reports whether a document file exists for the given bare ticker
func (s *Service) HasTicker(ticker string) bool {
	ticker = strings.ToUpper(strings.TrimSpace(common.BareTicker(ticker)))
	if ticker == "" {
		return false
	}

	info, err := os.Stat(filepath.Join(s.dir, ticker+".json"))
	return err == nil && !info.IsDir()
}

// Dir returns the documents directory path
func (s *Service) Dir() string {
	return s.dir
}

// isDocumentFile filters to primary {TICKER}.json files, excluding the
// rotated backups the scraper leaves behind.
func isDocumentFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	if strings.Contains(name, "_backup_") {
		return false
	}
	return true
}

var _ interfaces.DocumentStore = (*Service)(nil)
