package scraper

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/equityscope/equityscope/internal/models"
)

var (
	screenerSuffixPattern = regexp.MustCompile(`(?i)\s*\|\s*Screener.*$`)
	stockSuffixPattern    = regexp.MustCompile(`(?i)\s*-\s*Stock.*$`)
	inlineDatePattern     = regexp.MustCompile(`\b\d{1,2}[\s\-/]\w{3,9}[\s\-/]\d{2,4}\b`)
)

// eventKeywords route a scraped item into events rather than announcements
var eventKeywords = []string{"dividend", "agm", "egm", "result", "earnings", "meeting"}

const (
	maxItemsPerCategory = 20
	maxNewsDescLength   = 500
	maxEventDescLength  = 300
	minNewsTitleLength  = 10
	minEventTitleLength = 5
)

// parseCompanyPage extracts a company document from a screener.in company
// page. Screener's markup shifts between layouts, so every section is
// tried against several selectors and a missing section just leaves its
// field empty.
func parseCompanyPage(body io.Reader, ticker, sourceURL string) (*models.CompanyDocument, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	company := &models.CompanyDocument{
		Ticker:      ticker,
		CompanyName: extractCompanyName(doc, ticker),
		Ratios:      extractKeyRatios(doc),
		SourceURL:   sourceURL,
	}

	company.ProfitLoss = extractSectionTable(doc, "#profit-loss, #standalone-profit-loss, #stand-alone-profit-loss, #consolidated-profit-loss")
	company.BalanceSheet = extractSectionTable(doc, "#balance-sheet")
	company.CashFlow = extractSectionTable(doc, "#cash-flow")
	company.RatiosTable = extractSectionTable(doc, "#ratios")
	company.ShareholdingPattern = extractSectionTable(doc, "#shareholding")
	company.PeerComparison = extractSectionTable(doc, "#peers")

	extractNewsAndEvents(doc, company)

	return company, nil
}

func extractCompanyName(doc *goquery.Document, ticker string) string {
	for _, selector := range []string{"h1", ".company-name", "title"} {
		name := strings.TrimSpace(doc.Find(selector).First().Text())
		name = screenerSuffixPattern.ReplaceAllString(name, "")
		name = stockSuffixPattern.ReplaceAllString(name, "")
		if len(name) > 2 {
			return name
		}
	}
	return ticker
}

// extractKeyRatios reads the top ratios strip (name/value list items)
func extractKeyRatios(doc *goquery.Document) map[string]interface{} {
	ratios := make(map[string]interface{})

	for _, selector := range []string{"#top-ratios", ".company-ratios", ".ratios"} {
		doc.Find(selector).First().Find("li").Each(func(_ int, item *goquery.Selection) {
			name := strings.TrimSpace(item.Find(".name").First().Text())
			value := strings.TrimSpace(item.Find(".value").First().Text())
			if name != "" && value != "" {
				ratios[name] = cleanFinancialValue(value)
			}
		})
		if len(ratios) > 0 {
			return ratios
		}
	}

	return ratios
}

// extractSectionTable parses the first data table under any of the given
// section selectors into metric -> period -> value form. The first header
// cell is the row-label column and is dropped from the period headers.
func extractSectionTable(doc *goquery.Document, selectors string) map[string]map[string]interface{} {
	table := doc.Find(selectors).First().Find("table").First()
	if table.Length() == 0 {
		return nil
	}

	headerRow := table.Find("thead tr").First()
	if headerRow.Length() == 0 {
		headerRow = table.Find("tr").First()
	}

	headers := make([]string, 0)
	headerRow.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})
	if len(headers) > 1 {
		headers = headers[1:]
	}
	if len(headers) == 0 {
		return nil
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr").Slice(1, goquery.ToEnd)
	}

	data := make(map[string]map[string]interface{})
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}

		metric := strings.TrimSpace(cells.First().Text())
		if len(metric) < 2 {
			return
		}

		rowData := make(map[string]interface{})
		cells.Slice(1, goquery.ToEnd).Each(func(i int, cell *goquery.Selection) {
			if i < len(headers) {
				rowData[headers[i]] = cleanFinancialValue(strings.TrimSpace(cell.Text()))
			}
		})
		if len(rowData) > 0 {
			data[metric] = rowData
		}
	})

	if len(data) == 0 {
		return nil
	}
	return data
}

func extractNewsAndEvents(doc *goquery.Document, company *models.CompanyDocument) {
	for _, selector := range []string{".news-section", ".company-news", "#news", ".recent-news"} {
		section := doc.Find(selector).First()
		if section.Length() == 0 {
			continue
		}

		section.Find("li, .news-item, .article").Each(func(_ int, item *goquery.Selection) {
			if news, ok := parseNewsItem(item); ok {
				company.News = append(company.News, news)
			}
		})
		if len(company.News) > 0 {
			break
		}
	}

	for _, selector := range []string{".events-section", ".company-events", "#events", ".announcements"} {
		section := doc.Find(selector).First()
		if section.Length() == 0 {
			continue
		}

		section.Find("li, .event-item, .announcement").Each(func(_ int, item *goquery.Selection) {
			event, ok := parseEventItem(item)
			if !ok {
				return
			}
			if isCorporateEvent(event.Title) {
				company.Events = append(company.Events, event)
			} else {
				company.Announcements = append(company.Announcements, event)
			}
		})
		if len(company.Events) > 0 || len(company.Announcements) > 0 {
			break
		}
	}

	company.News = dedupeNews(company.News)
	company.Events = dedupeEvents(company.Events)
	company.Announcements = dedupeEvents(company.Announcements)
}

func parseNewsItem(item *goquery.Selection) (models.NewsItem, bool) {
	title := firstText(item, ".title, .headline, h3, h4, strong, a")
	if title == "" {
		title = strings.TrimSpace(item.Text())
	}
	if len(title) < minNewsTitleLength {
		return models.NewsItem{}, false
	}

	news := models.NewsItem{
		Title: title,
		Date:  extractItemDate(item),
	}

	if href, ok := item.Find("a").First().Attr("href"); ok && href != "" {
		if strings.HasPrefix(href, "/") {
			href = "https://www.screener.in" + href
		}
		news.Link = href
	}

	if desc := firstText(item, ".description, .summary, p"); desc != "" && desc != title {
		news.Description = truncate(desc, maxNewsDescLength)
	}

	return news, true
}

func parseEventItem(item *goquery.Selection) (models.EventItem, bool) {
	title := firstText(item, ".title, .event-title, h3, h4, strong")
	if title == "" {
		title = strings.TrimSpace(item.Text())
	}
	if len(title) < minEventTitleLength {
		return models.EventItem{}, false
	}

	event := models.EventItem{
		Title: title,
		Date:  extractItemDate(item),
		Type:  firstText(item, ".type, .category, .event-type"),
	}

	if desc := firstText(item, ".description, .details, p"); desc != "" && desc != title {
		event.Description = truncate(desc, maxEventDescLength)
	}

	return event, true
}

func extractItemDate(item *goquery.Selection) string {
	if date := firstText(item, ".date, .timestamp, time, [data-date]"); date != "" {
		return date
	}
	return inlineDatePattern.FindString(item.Text())
}

func isCorporateEvent(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range eventKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func firstText(item *goquery.Selection, selectors string) string {
	return strings.TrimSpace(item.Find(selectors).First().Text())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func dedupeNews(items []models.NewsItem) []models.NewsItem {
	seen := make(map[string]bool)
	out := items[:0]
	for _, item := range items {
		if seen[item.Title] {
			continue
		}
		seen[item.Title] = true
		out = append(out, item)
		if len(out) >= maxItemsPerCategory {
			break
		}
	}
	return out
}

func dedupeEvents(items []models.EventItem) []models.EventItem {
	seen := make(map[string]bool)
	out := items[:0]
	for _, item := range items {
		if seen[item.Title] {
			continue
		}
		seen[item.Title] = true
		out = append(out, item)
		if len(out) >= maxItemsPerCategory {
			break
		}
	}
	return out
}
