package universe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/httputil"
	"github.com/marketsift/sift/pkg/logger"
)

// Slickcharts scrapes the S&P 500 constituent table from
// slickcharts.com. Symbols come back in page order, which is the
// order every downstream tie-break relies on.
type Slickcharts struct {
	url        string
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewSlickcharts creates a constituent source from config. The page
// rejects Go's default agent, so the configured one is applied to
// every request.
func NewSlickcharts(cfg config.UniverseConfig, client *httputil.Client, log *logger.Logger) *Slickcharts {
	if cfg.UserAgent != "" {
		client = client.WithHeader("User-Agent", cfg.UserAgent)
	}
	return &Slickcharts{
		url:        cfg.URL,
		httpClient: client,
		logger:     log.WithComponent("universe"),
	}
}

// Symbols fetches and parses the constituent table. Every failure
// path, including an empty table, wraps ErrUnavailable.
func (s *Slickcharts) Symbols(ctx context.Context) ([]string, error) {
	resp, err := s.httpClient.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrUnavailable, resp.StatusCode, s.url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %v", ErrUnavailable, err)
	}

	symbols := s.parseConstituents(doc)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols found at %s", ErrUnavailable, s.url)
	}

	s.logger.WithField("count", len(symbols)).Debug("Fetched constituent list")
	return symbols, nil
}

// parseConstituents walks the constituent table. Columns are
// # | Company | Symbol | Weight | ..., with the symbol wrapped in a
// link in the third column.
func (s *Slickcharts) parseConstituents(doc *goquery.Document) []string {
	table := doc.Find("table.table-hover.table-borderless.table-sm").First()
	if table.Length() == 0 {
		// Page layout changed at least once before, fall back to the
		// first table carrying constituent rows.
		table = doc.Find("table.table").First()
	}

	var symbols []string
	seen := make(map[string]bool)

	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		symbol := strings.TrimSpace(cells.Eq(2).Text())
		if symbol == "" || seen[symbol] {
			return
		}

		seen[symbol] = true
		symbols = append(symbols, symbol)
	})

	return symbols
}
