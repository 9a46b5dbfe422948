package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/equityscope/equityscope/internal/common"
	"github.com/equityscope/equityscope/internal/interfaces"
	"github.com/equityscope/equityscope/internal/models"
)

// Service scrapes company fundamentals from screener.in and writes one JSON
// document per ticker into the documents directory. An existing document is
// rotated to a timestamped backup before the replacement is written, so a
// bad scrape never destroys the last good snapshot.
type Service struct {
	baseURL    string
	userAgent  string
	docsDir    string
	httpClient *http.Client
	limiter    *rate.Limiter
	validate   *validator.Validate
	logger     arbor.ILogger
}

func NewService(config *common.Config, logger arbor.ILogger) *Service {
	timeout := common.ParseDurationOr(config.Scraper.RequestTimeout, 30*time.Second, logger)
	delay := common.ParseDurationOr(config.Scraper.RequestDelay, 2*time.Second, logger)

	return &Service{
		baseURL:   strings.TrimSuffix(config.Scraper.BaseURL, "/"),
		userAgent: config.Scraper.UserAgent,
		docsDir:   config.Storage.Documents.Dir,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		validate: validator.New(),
		logger:   logger,
	}
}

// Scrape fetches, validates, and saves documents for the given bare tickers.
// A single failed ticker is logged and skipped; the error return is non-nil
// only when every requested ticker failed.
func (s *Service) Scrape(ctx context.Context, tickers []string) error {
	if len(tickers) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.docsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create documents directory %s: %w", s.docsDir, err)
	}

	var succeeded, failed int
	for i, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(common.BareTicker(ticker)))
		if ticker == "" {
			continue
		}

		s.logger.Info().
			Str("ticker", ticker).
			Int("position", i+1).
			Int("total", len(tickers)).
			Msg("Scraping company data")

		if err := s.scrapeOne(ctx, ticker); err != nil {
			s.logger.Warn().
				Err(err).
				Str("ticker", ticker).
				Msg("Failed to scrape company data")
			failed++
			continue
		}
		succeeded++
	}

	s.logger.Info().
		Int("succeeded", succeeded).
		Int("failed", failed).
		Msg("Scraping completed")

	if succeeded == 0 && failed > 0 {
		return fmt.Errorf("scraping failed for all %d tickers", failed)
	}
	return nil
}

func (s *Service) scrapeOne(ctx context.Context, ticker string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	company, err := s.fetchCompany(ctx, ticker)
	if err != nil {
		return err
	}

	if err := s.validateDocument(company); err != nil {
		return fmt.Errorf("scraped data failed validation: %w", err)
	}

	return s.saveDocument(company)
}

// fetchCompany tries the consolidated page first, then the standalone page
func (s *Service) fetchCompany(ctx context.Context, ticker string) (*models.CompanyDocument, error) {
	urls := []string{
		fmt.Sprintf("%s/company/%s/consolidated/", s.baseURL, ticker),
		fmt.Sprintf("%s/company/%s/", s.baseURL, ticker),
	}

	var lastErr error
	for _, pageURL := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", s.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, pageURL)
			continue
		}

		company, err := parseCompanyPage(resp.Body, ticker, pageURL)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to parse %s: %w", pageURL, err)
			continue
		}

		company.ScrapedAt = time.Now()
		return company, nil
	}

	return nil, fmt.Errorf("all page variants failed for %s: %w", ticker, lastErr)
}

// validateDocument rejects documents with no usable content. Structural
// checks come from the validator tags on the model; beyond that the
// document must carry at least one populated section worth indexing.
func (s *Service) validateDocument(company *models.CompanyDocument) error {
	if err := s.validate.Struct(company); err != nil {
		return err
	}

	hasSubstance := len(company.Ratios) > 0 ||
		len(company.ProfitLoss) > 0 ||
		len(company.News) > 0 ||
		len(company.Events) > 0 ||
		len(company.Announcements) > 0

	if !hasSubstance {
		return fmt.Errorf("no financial or news data found for %s", company.Ticker)
	}
	return nil
}

// saveDocument writes the document, rotating any existing file to a
// {TICKER}_backup_{unix}.json first.
func (s *Service) saveDocument(company *models.CompanyDocument) error {
	path := filepath.Join(s.docsDir, company.Ticker+".json")

	if _, err := os.Stat(path); err == nil {
		backupPath := filepath.Join(s.docsDir, fmt.Sprintf("%s_backup_%d.json", company.Ticker, time.Now().Unix()))
		if err := os.Rename(path, backupPath); err != nil {
			return fmt.Errorf("failed to rotate existing document: %w", err)
		}
		s.logger.Debug().
			Str("backup", filepath.Base(backupPath)).
			Msg("Rotated previous document to backup")
	}

	data, err := json.MarshalIndent(company, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	s.logger.Info().
		Str("ticker", company.Ticker).
		Str("file", filepath.Base(path)).
		Int("ratios", len(company.Ratios)).
		Int("pl_rows", len(company.ProfitLoss)).
		Msg("Saved company document")

	return nil
}

var _ interfaces.Scraper = (*Service)(nil)
