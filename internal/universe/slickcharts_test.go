package universe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/httputil"
	"github.com/marketsift/sift/pkg/logger"
)

const constituentsPage = `<!DOCTYPE html>
<html>
<body>
<div class="table-responsive">
<table class="table table-hover table-borderless table-sm">
<thead>
<tr><th>#</th><th>Company</th><th>Symbol</th><th>Weight</th><th>Price</th></tr>
</thead>
<tbody>
<tr><td>1</td><td><a href="/symbol/NVDA">Nvidia</a></td><td><a href="/symbol/NVDA">NVDA</a></td><td>7.5%</td><td>182.01</td></tr>
<tr><td>2</td><td><a href="/symbol/MSFT">Microsoft</a></td><td><a href="/symbol/MSFT">MSFT</a></td><td>6.8%</td><td>507.23</td></tr>
<tr><td>3</td><td><a href="/symbol/AAPL">Apple</a></td><td><a href="/symbol/AAPL">AAPL</a></td><td>6.1%</td><td>231.59</td></tr>
<tr><td>4</td><td><a href="/symbol/BRK.B">Berkshire Hathaway</a></td><td><a href="/symbol/BRK.B">BRK.B</a></td><td>1.7%</td><td>472.84</td></tr>
<tr><td>5</td><td><a href="/symbol/AAPL">Apple (dup)</a></td><td><a href="/symbol/AAPL">AAPL</a></td><td>0.0%</td><td>231.59</td></tr>
</tbody>
</table>
</div>
</body>
</html>`

func newTestSource(t *testing.T, url string) *Slickcharts {
	t.Helper()

	log := logger.New(&config.Config{Env: "development", LogLevel: "error"})
	client := httputil.New(log, 5*time.Second).DisableRetry()

	return NewSlickcharts(config.UniverseConfig{URL: url, UserAgent: "Mozilla/5.0"}, client, log)
}

func TestSlickcharts_Symbols(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentsPage))
	}))
	defer server.Close()

	source := newTestSource(t, server.URL)

	symbols, err := source.Symbols(context.Background())
	require.NoError(t, err)

	// Page order preserved, duplicate AAPL dropped
	assert.Equal(t, []string{"NVDA", "MSFT", "AAPL", "BRK.B"}, symbols)
}

func TestSlickcharts_SymbolsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	source := newTestSource(t, server.URL)

	_, err := source.Symbols(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable), "expected ErrUnavailable, got %v", err)
}

func TestSlickcharts_SymbolsEmptyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>maintenance</p></body></html>`))
	}))
	defer server.Close()

	source := newTestSource(t, server.URL)

	_, err := source.Symbols(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable), "zero symbols must be unavailable, got %v", err)
}

func TestSlickcharts_SymbolsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	source := newTestSource(t, server.URL)

	_, err := source.Symbols(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
