package screen

import (
	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/internal/fundamentals"
)

// MagicFormula scores companies on Greenblatt's two axes: return on
// capital and earnings yield. Both components are ranked independently
// and combined, so a company must be cheap and productive to place.
type MagicFormula struct{}

// NewMagicFormula creates a magic formula model.
func NewMagicFormula() *MagicFormula {
	return &MagicFormula{}
}

// Name implements Model.
func (m *MagicFormula) Name() string { return ModelMagicFormula }

// Ranking implements Model.
func (m *MagicFormula) Ranking() contracts.RankingSpec {
	return contracts.RankingSpec{
		Method:     contracts.RankByCombined,
		Components: []string{ComponentReturnOnCapital, ComponentEarningsYield},
	}
}

// Score implements Model. Checks run in order: absent metrics first,
// then zero denominators, so a symbol is excluded for missing data
// before any arithmetic is attempted on it.
func (m *MagicFormula) Score(snap *fundamentals.Snapshot) contracts.Outcome {
	reasons := missingReasons([]metric{
		{MetricEBIT, snap.EBIT},
		{MetricTotalAssets, snap.TotalAssets},
		{MetricCurrentAssets, snap.CurrentAssets},
		{MetricCurrentLiabilities, snap.CurrentLiabilities},
		{MetricMarketCap, snap.MarketCap},
		{MetricTotalDebt, snap.TotalDebt},
		{MetricTotalCash, snap.TotalCash},
	})
	if len(reasons) > 0 {
		return contracts.Excluded(snap.Symbol, reasons...)
	}

	netFixedAssets := *snap.TotalAssets - *snap.CurrentAssets
	workingCapital := *snap.CurrentAssets - *snap.CurrentLiabilities
	enterpriseValue := *snap.MarketCap + *snap.TotalDebt - *snap.TotalCash

	capitalBase := workingCapital + netFixedAssets
	if capitalBase == 0 || enterpriseValue == 0 {
		return contracts.Excluded(snap.Symbol, contracts.ReasonDivisionByZero)
	}

	return contracts.Included(snap.Symbol, map[string]float64{
		ComponentReturnOnCapital: *snap.EBIT / capitalBase,
		ComponentEarningsYield:   *snap.EBIT / enterpriseValue,
	})
}
