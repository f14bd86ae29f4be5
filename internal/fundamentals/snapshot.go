package fundamentals

import "time"

// Snapshot is a best-effort view of one company's fundamentals at
// fetch time. Every metric is optional: a nil pointer means the
// provider had no figure, and models must treat that as a first-class
// state rather than a zero.
type Snapshot struct {
	Symbol string `json:"symbol"`

	// Name is the company's short name when the provider supplies one.
	Name string `json:"name,omitempty"`

	// Valuation and quality metrics.
	PERatio        *float64 `json:"pe_ratio,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`

	// DividendYield is a fraction (0.0131 means 1.31%).
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`

	// Earnings-yield and return-on-capital inputs.
	EBIT               *float64 `json:"ebit,omitempty"`
	TotalAssets        *float64 `json:"total_assets,omitempty"`
	CurrentAssets      *float64 `json:"current_assets,omitempty"`
	CurrentLiabilities *float64 `json:"current_liabilities,omitempty"`
	MarketCap          *float64 `json:"market_cap,omitempty"`
	TotalDebt          *float64 `json:"total_debt,omitempty"`
	TotalCash          *float64 `json:"total_cash,omitempty"`

	// DividendDates holds every recorded payment date, ascending.
	DividendDates []time.Time `json:"dividend_dates,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// Float is a literal-pointer helper for building snapshots.
func Float(v float64) *float64 {
	return &v
}
