package wikipedia

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"atlas/internal/metrics"
	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

const defaultBaseURL = "https://en.wikipedia.org"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// indexPage describes where an index's constituents table lives and which
// column holds the ticker.
type indexPage struct {
	path    string
	columns []string
	suffix  string // appended to each ticker, e.g. ".L" for LSE listings
}

var indexPages = map[string]indexPage{
	"SP500":     {path: "/wiki/List_of_S%26P_500_companies", columns: []string{"Symbol", "Ticker", "Security"}},
	"NASDAQ100": {path: "/wiki/Nasdaq-100", columns: []string{"Ticker", "Symbol", "Security"}},
	"FTSE100":   {path: "/wiki/FTSE_100_Index", columns: []string{"Ticker", "TIDM", "Code"}, suffix: ".L"},
}

// The Dow has 30 fixed members; no table scrape needed.
var dowJonesSymbols = []string{
	"AAPL", "AMGN", "AXP", "BA", "CAT", "CRM", "CSCO", "CVX", "DIS", "GS",
	"HD", "HON", "IBM", "INTC", "JNJ", "JPM", "KO", "MCD", "MMM", "MRK",
	"MSFT", "NKE", "PG", "TRV", "UNH", "V", "VZ", "WBA", "WMT", "DOW",
}

// SupportedIndexes lists the index names Constituents accepts.
func SupportedIndexes() []string {
	return []string{"SP500", "NASDAQ100", "FTSE100", "DOWJONES"}
}

// NormalizeIndex folds "S&P 500", "sp-500" etc. into a canonical key.
func NormalizeIndex(name string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "", "&", "", ".", "")
	return replacer.Replace(strings.ToUpper(name))
}

// Client scrapes index constituent tables from Wikipedia.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// NewClient creates a Wikipedia scraper client.
func NewClient(log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		log:        log.With("component", "wikipedia"),
	}
}

// Constituents returns the ticker symbols for a major index.
func (c *Client) Constituents(ctx context.Context, indexName string) ([]string, error) {
	key := NormalizeIndex(indexName)
	if key == "DOWJONES" {
		out := make([]string, len(dowJonesSymbols))
		copy(out, dowJonesSymbols)
		return out, nil
	}

	page, ok := indexPages[key]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"index %q not recognized, supported: %s", indexName, strings.Join(SupportedIndexes(), ", "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+page.path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build wikipedia request")
	}
	req.Header.Set("User-Agent", browserUserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamCall("wikipedia", key, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrapf(err, "wikipedia request failed for %s", key)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrUnavailable, "wikipedia returned HTTP %d for %s", resp.StatusCode, key)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse wikipedia page for %s", key)
	}

	symbols := extractColumn(doc, page.columns)
	if len(symbols) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no constituents table found for %s", key)
	}

	if page.suffix != "" {
		for i, s := range symbols {
			symbols[i] = s + page.suffix
		}
	}
	return symbols, nil
}

// extractColumn walks every table in the document and returns the cell
// values of the first column whose header matches one of the candidates.
func extractColumn(doc *html.Node, candidates []string) []string {
	for _, table := range findAll(doc, "table") {
		rows := findAll(table, "tr")
		if len(rows) < 2 {
			continue
		}

		colIdx := -1
		headers := cellTexts(rows[0])
		for _, want := range candidates {
			for i, h := range headers {
				if strings.EqualFold(h, want) {
					colIdx = i
					break
				}
			}
			if colIdx >= 0 {
				break
			}
		}
		if colIdx < 0 {
			continue
		}

		var symbols []string
		for _, row := range rows[1:] {
			cells := cellTexts(row)
			if colIdx < len(cells) && cells[colIdx] != "" {
				symbols = append(symbols, cells[colIdx])
			}
		}
		if len(symbols) > 0 {
			return symbols
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func cellTexts(row *html.Node) []string {
	var out []string
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			out = append(out, strings.TrimSpace(nodeText(c)))
		}
	}
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
