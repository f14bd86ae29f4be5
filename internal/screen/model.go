package screen

import (
	"fmt"

	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/internal/fundamentals"
)

// Model turns one fundamentals snapshot into a score outcome.
// Implementations are pure: no I/O, no logging, no shared state, so a
// model can be applied from any number of workers at once.
type Model interface {
	// Name is the stable identifier used by the CLI, the scheduler and
	// stored runs.
	Name() string

	// Ranking declares how the engine should order this model's
	// included outcomes.
	Ranking() contracts.RankingSpec

	// Score evaluates a single symbol. It always returns an outcome;
	// data problems become exclusion reasons, never errors.
	Score(snap *fundamentals.Snapshot) contracts.Outcome
}

// Model names accepted by ByName.
const (
	ModelFactor       = "factor"
	ModelMagicFormula = "magicformula"
	ModelDividend     = "dividend"
)

// Metric names used in "missing metric" exclusion reasons. They match
// the snapshot's JSON field names so reports and stored runs agree.
const (
	MetricPERatio            = "pe_ratio"
	MetricReturnOnEquity     = "return_on_equity"
	MetricDebtToEquity       = "debt_to_equity"
	MetricDividendYield      = "dividend_yield"
	MetricEBIT               = "ebit"
	MetricTotalAssets        = "total_assets"
	MetricCurrentAssets      = "current_assets"
	MetricCurrentLiabilities = "current_liabilities"
	MetricMarketCap          = "market_cap"
	MetricTotalDebt          = "total_debt"
	MetricTotalCash          = "total_cash"
)

// Component names carried on included outcomes.
const (
	ComponentScore            = "score"
	ComponentReturnOnCapital  = "return_on_capital"
	ComponentEarningsYield    = "earnings_yield"
	ComponentDividendYield    = "dividend_yield"
	ComponentConsecutiveYears = "consecutive_years"
)

// ByName builds the named model. The factor model takes its weights
// from the strategy config; the other models have no parameters.
func ByName(name string, weights FactorWeights) (Model, error) {
	switch name {
	case ModelFactor:
		return NewFactor(weights), nil
	case ModelMagicFormula:
		return NewMagicFormula(), nil
	case ModelDividend:
		return NewDividend(), nil
	default:
		return nil, fmt.Errorf("unknown model %q (want one of %v)", name, Names())
	}
}

// Names lists the available model names in presentation order.
func Names() []string {
	return []string{ModelFactor, ModelMagicFormula, ModelDividend}
}

// metric pairs a snapshot field with the name used in exclusion reasons.
type metric struct {
	name  string
	value *float64
}

// missingReasons returns one reason per absent metric, in declared
// order, so a symbol missing everything lists every metric.
func missingReasons(metrics []metric) []string {
	var reasons []string
	for _, m := range metrics {
		if m.value == nil {
			reasons = append(reasons, contracts.MissingMetricReason(m.name))
		}
	}
	return reasons
}
