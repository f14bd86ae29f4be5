package fundamentals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/httputil"
	"github.com/marketsift/sift/pkg/logger"
)

const quoteSummaryBody = `{"quoteSummary":{"result":[{
  "summaryDetail":{"trailingPE":{"raw":34.7,"fmt":"34.70"},"dividendYield":{"raw":0.0044,"fmt":"0.44%"}},
  "financialData":{"returnOnEquity":{"raw":1.4725,"fmt":"147.25%"},"debtToEquity":{"raw":154.49,"fmt":"154.49"},
    "totalDebt":{"raw":101698002944,"fmt":"101.7B"},"totalCash":{"raw":67150001152,"fmt":"67.15B"},
    "currentPrice":{"raw":231.59,"fmt":"231.59"}},
  "price":{"shortName":"Apple Inc.","marketCap":{"raw":3438275727360,"fmt":"3.44T"},
    "regularMarketPrice":{"raw":231.59,"fmt":"231.59"}},
  "incomeStatementHistory":{"incomeStatementHistory":[{"ebit":{"raw":123216003072,"fmt":"123.22B"}}]},
  "balanceSheetHistory":{"balanceSheetStatements":[{"totalAssets":{"raw":364980002816},
    "totalCurrentAssets":{"raw":152987000832},"totalCurrentLiabilities":{"raw":176392003584}}]}
}],"error":null}}`

const chartBody = `{"chart":{"result":[{"meta":{"regularMarketPrice":231.59},
  "events":{"dividends":{
    "1755008100":{"amount":0.26,"date":1755008100},
    "1747229700":{"amount":0.26,"date":1747229700},
    "1739374500":{"amount":0.25,"date":1739374500}}}
}],"error":null}}`

// emptyModulesBody has the envelope but no figures inside.
const emptyModulesBody = `{"quoteSummary":{"result":[{"price":{"shortName":"Husk Corp"}}],"error":null}}`

const emptyChartBody = `{"chart":{"result":[{"meta":{"regularMarketPrice":12.5},"events":{}}],"error":null}}`

func newTestYahoo(t *testing.T, handler http.Handler) *YahooProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.New(&config.Config{Env: "development", LogLevel: "error"})
	client := httputil.New(log, 5*time.Second).DisableRetry()

	provider := NewYahoo(config.YahooConfig{
		BaseURL:   server.URL,
		UserAgent: "Mozilla/5.0 (test)",
		RateLimit: 1000,
		RateBurst: 100,
	}, client, log)

	// No warmup hosts in tests, the crumb endpoint is on the test server.
	provider.warmupURLs = nil

	return provider
}

func yahooHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("testcrumb"))
	})

	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		if crumb := r.URL.Query().Get("crumb"); crumb != "testcrumb" {
			t.Errorf("Expected crumb to be forwarded, got %q", crumb)
		}

		symbol := strings.TrimPrefix(r.URL.Path, "/v10/finance/quoteSummary/")
		switch symbol {
		case "AAPL":
			w.Write([]byte(quoteSummaryBody))
		case "HUSK":
			w.Write([]byte(emptyModulesBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		if events := r.URL.Query().Get("events"); events != "div" {
			t.Errorf("Expected events=div, got %q", events)
		}

		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		switch symbol {
		case "AAPL":
			w.Write([]byte(chartBody))
		default:
			w.Write([]byte(emptyChartBody))
		}
	})

	return mux
}

func TestYahooProvider_Snapshot(t *testing.T) {
	provider := newTestYahoo(t, yahooHandler(t))

	snap, err := provider.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, "Apple Inc.", snap.Name)

	require.NotNil(t, snap.PERatio)
	assert.InDelta(t, 34.7, *snap.PERatio, 1e-9)

	require.NotNil(t, snap.ReturnOnEquity)
	assert.InDelta(t, 1.4725, *snap.ReturnOnEquity, 1e-9)

	require.NotNil(t, snap.DebtToEquity)
	assert.InDelta(t, 154.49, *snap.DebtToEquity, 1e-9)

	require.NotNil(t, snap.DividendYield)
	assert.InDelta(t, 0.0044, *snap.DividendYield, 1e-9)

	require.NotNil(t, snap.CurrentPrice)
	assert.InDelta(t, 231.59, *snap.CurrentPrice, 1e-9)

	require.NotNil(t, snap.EBIT)
	assert.InDelta(t, 123216003072, *snap.EBIT, 1)

	require.NotNil(t, snap.TotalAssets)
	require.NotNil(t, snap.CurrentAssets)
	require.NotNil(t, snap.CurrentLiabilities)
	require.NotNil(t, snap.MarketCap)
	require.NotNil(t, snap.TotalDebt)
	require.NotNil(t, snap.TotalCash)

	// Dividend dates decoded from the events map and sorted ascending
	require.Len(t, snap.DividendDates, 3)
	for i := 1; i < len(snap.DividendDates); i++ {
		assert.True(t, snap.DividendDates[i-1].Before(snap.DividendDates[i]),
			"dates must ascend: %v", snap.DividendDates)
	}

	assert.False(t, snap.FetchedAt.IsZero())
}

func TestYahooProvider_SnapshotMissingMetrics(t *testing.T) {
	provider := newTestYahoo(t, yahooHandler(t))

	snap, err := provider.Snapshot(context.Background(), "HUSK")
	require.NoError(t, err)

	// Absent figures stay nil, never zero
	assert.Nil(t, snap.PERatio)
	assert.Nil(t, snap.ReturnOnEquity)
	assert.Nil(t, snap.DebtToEquity)
	assert.Nil(t, snap.DividendYield)
	assert.Nil(t, snap.EBIT)
	assert.Nil(t, snap.TotalAssets)
	assert.Nil(t, snap.MarketCap)

	assert.Equal(t, "Husk Corp", snap.Name)
	assert.Empty(t, snap.DividendDates)

	// Chart meta price fills in when financialData has none
	require.NotNil(t, snap.CurrentPrice)
	assert.InDelta(t, 12.5, *snap.CurrentPrice, 1e-9)
}

func TestYahooProvider_SnapshotUnknownSymbol(t *testing.T) {
	provider := newTestYahoo(t, yahooHandler(t))

	_, err := provider.Snapshot(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOPE")
}

func TestYahooProvider_ChartFailureDegrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("testcrumb"))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(quoteSummaryBody))
	})
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	provider := newTestYahoo(t, mux)

	snap, err := provider.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err, "a dead dividend endpoint must not fail the symbol")

	assert.NotNil(t, snap.PERatio)
	assert.Empty(t, snap.DividendDates)
}
