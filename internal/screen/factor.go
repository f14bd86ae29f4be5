package screen

import (
	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/internal/fundamentals"
)

// FactorWeights holds the linear weights of the factor score. Each
// weight multiplies the raw metric value, so sign conventions live
// here: valuation and leverage weigh negative, profitability and
// yield positive.
type FactorWeights struct {
	PERatio        float64 `yaml:"pe_ratio" json:"pe_ratio"`
	ReturnOnEquity float64 `yaml:"return_on_equity" json:"return_on_equity"`
	DebtToEquity   float64 `yaml:"debt_to_equity" json:"debt_to_equity"`
	DividendYield  float64 `yaml:"dividend_yield" json:"dividend_yield"`
}

// DefaultFactorWeights returns the stock weighting of the factor
// score: score = -10*pe + 10*roe - 0.1*dte + 100*yield.
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{
		PERatio:        -10,
		ReturnOnEquity: 10,
		DebtToEquity:   -0.1,
		DividendYield:  100,
	}
}

// Factor scores companies on a single composite of valuation,
// profitability, leverage and yield. Because the composite is already
// one number, its outcomes rank directly by descending score rather
// than through per-component fractional ranks.
type Factor struct {
	weights FactorWeights
}

// NewFactor creates a factor model with the given weights.
func NewFactor(weights FactorWeights) *Factor {
	return &Factor{weights: weights}
}

// Name implements Model.
func (m *Factor) Name() string { return ModelFactor }

// Ranking implements Model.
func (m *Factor) Ranking() contracts.RankingSpec {
	return contracts.RankingSpec{
		Method:     contracts.RankByScore,
		Components: []string{ComponentScore},
	}
}

// Score implements Model. Any absent input metric excludes the symbol;
// present metrics are never clamped, so a negative ROE legitimately
// drags the score down.
func (m *Factor) Score(snap *fundamentals.Snapshot) contracts.Outcome {
	reasons := missingReasons([]metric{
		{MetricPERatio, snap.PERatio},
		{MetricReturnOnEquity, snap.ReturnOnEquity},
		{MetricDebtToEquity, snap.DebtToEquity},
		{MetricDividendYield, snap.DividendYield},
	})
	if len(reasons) > 0 {
		return contracts.Excluded(snap.Symbol, reasons...)
	}

	score := m.weights.PERatio**snap.PERatio +
		m.weights.ReturnOnEquity**snap.ReturnOnEquity +
		m.weights.DebtToEquity**snap.DebtToEquity +
		m.weights.DividendYield**snap.DividendYield

	return contracts.Included(snap.Symbol, map[string]float64{
		ComponentScore: score,
	})
}
