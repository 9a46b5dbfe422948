package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/equityscope/equityscope/internal/common"
)

const companyPageHTML = `<!DOCTYPE html>
<html>
<head><title>Tata Consultancy Services | Screener</title></head>
<body>
<h1>Tata Consultancy Services Ltd</h1>
<ul id="top-ratios">
  <li><span class="name">Market Cap</span><span class="value">14,51,570 Cr</span></li>
  <li><span class="name">Stock P/E</span><span class="value">28.5</span></li>
  <li><span class="name">ROCE</span><span class="value">64.3 %</span></li>
  <li><span class="name">Book Value</span><span class="value">-</span></li>
</ul>
<section id="profit-loss">
  <table>
    <thead><tr><th></th><th>Mar 2023</th><th>Mar 2024</th></tr></thead>
    <tbody>
      <tr><td>Sales</td><td>2,25,458</td><td>2,40,893</td></tr>
      <tr><td>Net Profit</td><td>42,147</td><td>45,908</td></tr>
    </tbody>
  </table>
</section>
<section id="shareholding">
  <table>
    <thead><tr><th></th><th>Jun 2026</th></tr></thead>
    <tbody><tr><td>Promoters</td><td>71.77%</td></tr></tbody>
  </table>
</section>
<div class="events-section">
  <ul>
    <li><strong>Dividend declared for FY26</strong><span class="date">15 Jul 2026</span></li>
    <li><strong>New campus inaugurated in Pune</strong></li>
  </ul>
</div>
</body>
</html>`

func TestParseCompanyPage(t *testing.T) {
	t.Log("=== Testing Company Page Parsing ===")

	doc, err := parseCompanyPage(strings.NewReader(companyPageHTML), "TCS", "https://example.test/company/TCS/")
	require.NoError(t, err)

	assert.Equal(t, "TCS", doc.Ticker)
	assert.Equal(t, "Tata Consultancy Services Ltd", doc.CompanyName)

	require.NotEmpty(t, doc.Ratios)
	assert.InDelta(t, 14515700000000.0, doc.Ratios["Market Cap"].(float64), 1)
	assert.InDelta(t, 28.5, doc.Ratios["Stock P/E"].(float64), 1e-9)
	assert.InDelta(t, 64.3, doc.Ratios["ROCE"].(float64), 1e-9)
	assert.Nil(t, doc.Ratios["Book Value"])

	require.Contains(t, doc.ProfitLoss, "Sales")
	assert.InDelta(t, 240893.0, doc.ProfitLoss["Sales"]["Mar 2024"].(float64), 1e-9)

	require.Contains(t, doc.ShareholdingPattern, "Promoters")
	assert.InDelta(t, 71.77, doc.ShareholdingPattern["Promoters"]["Jun 2026"].(float64), 1e-9)

	require.Len(t, doc.Events, 1, "dividend item is a corporate event")
	assert.Equal(t, "Dividend declared for FY26", doc.Events[0].Title)
	assert.Equal(t, "15 Jul 2026", doc.Events[0].Date)
	require.Len(t, doc.Announcements, 1)
	assert.Equal(t, "New campus inaugurated in Pune", doc.Announcements[0].Title)

	t.Log("✅ Ratios, tables, and events extracted from page markup")
}

func TestParseCompanyPage_TruncatesDescriptions(t *testing.T) {
	t.Log("=== Testing Description Caps During Parsing ===")

	newsDesc := strings.Repeat("n", 600)
	eventDesc := strings.Repeat("e", 450)
	page := fmt.Sprintf(`<html><body>
<h1>Tata Consultancy Services Ltd</h1>
<ul id="top-ratios"><li><span class="name">Stock P/E</span><span class="value">28.5</span></li></ul>
<div class="news-section"><ul>
  <li><strong>Contract win announced</strong><span class="description">%s</span></li>
</ul></div>
<div class="events-section"><ul>
  <li><strong>Dividend declared for FY26</strong><span class="description">%s</span></li>
</ul></div>
</body></html>`, newsDesc, eventDesc)

	doc, err := parseCompanyPage(strings.NewReader(page), "TCS", "https://example.test/company/TCS/")
	require.NoError(t, err)

	require.Len(t, doc.News, 1)
	assert.Len(t, doc.News[0].Description, 500, "news descriptions cap at 500 characters")

	require.Len(t, doc.Events, 1)
	assert.Len(t, doc.Events[0].Description, 300, "event descriptions cap at 300 characters")

	t.Log("✅ Oversized descriptions truncated at scrape time")
}

func TestCleanFinancialValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  interface{}
	}{
		{"plain number", "28.5", 28.5},
		{"comma separated", "2,25,458", 225458.0},
		{"percentage", "64.3 %", 64.3},
		{"crore suffix", "1,451 Cr", 14510000000.0},
		{"empty marker", "-", nil},
		{"na marker", "N/A", nil},
		{"unparseable stays string", "Sep 2026", "Sep 2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanFinancialValue(tt.input))
		})
	}
}

func newTestScraper(t *testing.T, handler http.HandlerFunc) (*Service, string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := common.NewDefaultConfig()
	config.Scraper.BaseURL = server.URL
	config.Scraper.RequestDelay = "1ms"
	config.Storage.Documents.Dir = t.TempDir()

	return NewService(config, arbor.NewLogger()), config.Storage.Documents.Dir
}

func TestScrape_SavesDocument(t *testing.T) {
	t.Log("=== Testing Scrape and Save ===")

	service, dir := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, companyPageHTML)
	})

	require.NoError(t, service.Scrape(context.Background(), []string{"TCS.NS"}))

	data, err := os.ReadFile(filepath.Join(dir, "TCS.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tata Consultancy Services Ltd")

	t.Log("✅ Document fetched, validated, and written as TCS.json")
}

func TestScrape_RotatesBackup(t *testing.T) {
	service, dir := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, companyPageHTML)
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "TCS.json"), []byte(`{"ticker":"TCS"}`), 0o644))

	require.NoError(t, service.Scrape(context.Background(), []string{"TCS"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups int
	for _, entry := range entries {
		if strings.Contains(entry.Name(), "TCS_backup_") {
			backups++
		}
	}
	assert.Equal(t, 1, backups, "previous document rotated to a backup")
}

func TestScrape_FallsBackToStandalonePage(t *testing.T) {
	var paths []string
	service, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.Contains(r.URL.Path, "consolidated") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, companyPageHTML)
	})

	require.NoError(t, service.Scrape(context.Background(), []string{"TCS"}))
	require.Len(t, paths, 2)
	assert.Equal(t, "/company/TCS/consolidated/", paths[0])
	assert.Equal(t, "/company/TCS/", paths[1])
}

func TestScrape_AllTickersFailed(t *testing.T) {
	service, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	err := service.Scrape(context.Background(), []string{"BOGUS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scraping failed for all")
}

func TestScrape_RejectsEmptyPage(t *testing.T) {
	service, dir := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Some Company</h1></body></html>`)
	})

	err := service.Scrape(context.Background(), []string{"EMPTY"})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "EMPTY.json"))
	assert.True(t, os.IsNotExist(statErr), "invalid document must not be saved")
}

func TestScrape_NoTickers(t *testing.T) {
	service, _ := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	require.NoError(t, service.Scrape(context.Background(), nil))
}
