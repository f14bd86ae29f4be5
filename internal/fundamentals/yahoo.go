package fundamentals

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/httputil"
	"github.com/marketsift/sift/pkg/logger"
)

const quoteSummaryModules = "summaryDetail,financialData,price,incomeStatementHistory,balanceSheetHistory"

// yahooValue is Yahoo's numeric envelope: {"raw": 1.23, "fmt": "1.23"}.
// A missing figure leaves Raw nil.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE    yahooValue `json:"trailingPE"`
				DividendYield yahooValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			FinancialData struct {
				ReturnOnEquity yahooValue `json:"returnOnEquity"`
				DebtToEquity   yahooValue `json:"debtToEquity"`
				TotalDebt      yahooValue `json:"totalDebt"`
				TotalCash      yahooValue `json:"totalCash"`
				CurrentPrice   yahooValue `json:"currentPrice"`
			} `json:"financialData"`
			Price struct {
				ShortName          string     `json:"shortName"`
				MarketCap          yahooValue `json:"marketCap"`
				RegularMarketPrice yahooValue `json:"regularMarketPrice"`
			} `json:"price"`
			IncomeStatementHistory struct {
				Statements []struct {
					EBIT yahooValue `json:"ebit"`
				} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			BalanceSheetHistory struct {
				Statements []struct {
					TotalAssets             yahooValue `json:"totalAssets"`
					TotalCurrentAssets      yahooValue `json:"totalCurrentAssets"`
					TotalCurrentLiabilities yahooValue `json:"totalCurrentLiabilities"`
				} `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistory"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// YahooProvider fetches fundamentals from the Yahoo Finance public
// API: one quoteSummary call for the metric set and one chart call
// for the dividend payment history.
type YahooProvider struct {
	baseURL    string
	httpClient *httputil.Client
	logger     *logger.Logger

	// Yahoo hands out a session cookie plus a crumb token that some
	// endpoints require. Fetched once, shared by all workers.
	mu          sync.Mutex
	crumb       string
	initialized bool
	warmupURLs  []string
	crumbURL    string
}

// NewYahoo creates a provider from config. The rate limit, browser
// agent, and cookie jar for the session flow are applied here so
// callers hand in a plain client.
func NewYahoo(cfg config.YahooConfig, client *httputil.Client, log *logger.Logger) *YahooProvider {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err == nil {
		client = client.WithCookieJar(jar)
	}

	if cfg.UserAgent != "" {
		client = client.WithHeader("User-Agent", cfg.UserAgent)
	}
	client = client.WithRateLimit(cfg.RateLimit, cfg.RateBurst)

	base := strings.TrimRight(cfg.BaseURL, "/")

	return &YahooProvider{
		baseURL:    base,
		httpClient: client,
		logger:     log.WithComponent("fundamentals"),
		warmupURLs: []string{"https://fc.yahoo.com", "https://finance.yahoo.com"},
		crumbURL:   base + "/v1/test/getcrumb",
	}
}

// Snapshot fetches the metric set and dividend history for a symbol.
// Metrics Yahoo has no figure for stay nil. A failed dividend-history
// call degrades to an empty history instead of failing the symbol,
// since two of the three models never look at it.
func (p *YahooProvider) Snapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	p.ensureSession(ctx)

	snap := &Snapshot{
		Symbol:    symbol,
		FetchedAt: time.Now().UTC(),
	}

	if err := p.fetchQuoteSummary(ctx, symbol, snap); err != nil {
		return nil, fmt.Errorf("quote summary for %s: %w", symbol, err)
	}

	if err := p.fetchDividendHistory(ctx, symbol, snap); err != nil {
		p.logger.WithError(err).WithField("symbol", symbol).Warn("Dividend history unavailable")
	}

	return snap, nil
}

// ensureSession primes the Yahoo cookie jar and fetches the crumb
// token. One attempt only; a refused session just means crumb-less
// requests, which Yahoo intermittently accepts.
func (p *YahooProvider) ensureSession(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return
	}
	p.initialized = true

	for _, warmup := range p.warmupURLs {
		resp, err := p.httpClient.Get(ctx, warmup)
		if err != nil {
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	resp, err := p.httpClient.Get(ctx, p.crumbURL)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to fetch session crumb")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		p.logger.WithField("status", resp.StatusCode).Warn("Failed to fetch session crumb")
		return
	}

	body, _ := io.ReadAll(resp.Body)
	p.crumb = strings.TrimSpace(string(body))
	p.logger.Debug("Yahoo session initialized")
}

func (p *YahooProvider) currentCrumb() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.crumb
}

func (p *YahooProvider) fetchQuoteSummary(ctx context.Context, symbol string, snap *Snapshot) error {
	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s&crumb=%s",
		p.baseURL, url.PathEscape(symbol), quoteSummaryModules, url.QueryEscape(p.currentCrumb()))

	var out yahooQuoteSummaryResponse
	if err := p.httpClient.GetJSON(ctx, reqURL, &out); err != nil {
		return err
	}

	if len(out.QuoteSummary.Result) == 0 {
		return fmt.Errorf("empty quote summary result")
	}

	r := out.QuoteSummary.Result[0]

	snap.Name = r.Price.ShortName
	snap.PERatio = r.SummaryDetail.TrailingPE.Raw
	snap.DividendYield = r.SummaryDetail.DividendYield.Raw
	snap.ReturnOnEquity = r.FinancialData.ReturnOnEquity.Raw
	snap.DebtToEquity = r.FinancialData.DebtToEquity.Raw
	snap.TotalDebt = r.FinancialData.TotalDebt.Raw
	snap.TotalCash = r.FinancialData.TotalCash.Raw
	snap.MarketCap = r.Price.MarketCap.Raw
	snap.CurrentPrice = firstRaw(r.FinancialData.CurrentPrice, r.Price.RegularMarketPrice)

	if len(r.IncomeStatementHistory.Statements) > 0 {
		snap.EBIT = r.IncomeStatementHistory.Statements[0].EBIT.Raw
	}

	if len(r.BalanceSheetHistory.Statements) > 0 {
		bs := r.BalanceSheetHistory.Statements[0]
		snap.TotalAssets = bs.TotalAssets.Raw
		snap.CurrentAssets = bs.TotalCurrentAssets.Raw
		snap.CurrentLiabilities = bs.TotalCurrentLiabilities.Raw
	}

	return nil
}

func (p *YahooProvider) fetchDividendHistory(ctx context.Context, symbol string, snap *Snapshot) error {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=max&interval=1d&events=div&crumb=%s",
		p.baseURL, url.PathEscape(symbol), url.QueryEscape(p.currentCrumb()))

	var out yahooChartResponse
	if err := p.httpClient.GetJSON(ctx, reqURL, &out); err != nil {
		return err
	}

	if len(out.Chart.Result) == 0 {
		return fmt.Errorf("empty chart result")
	}

	r := out.Chart.Result[0]

	if snap.CurrentPrice == nil && r.Meta.RegularMarketPrice > 0 {
		snap.CurrentPrice = Float(r.Meta.RegularMarketPrice)
	}

	dates := make([]time.Time, 0, len(r.Events.Dividends))
	for _, div := range r.Events.Dividends {
		if div.Date > 0 {
			dates = append(dates, time.Unix(div.Date, 0).UTC())
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	snap.DividendDates = dates

	return nil
}

// firstRaw returns the first populated value.
func firstRaw(values ...yahooValue) *float64 {
	for _, v := range values {
		if v.Raw != nil {
			return v.Raw
		}
	}
	return nil
}
