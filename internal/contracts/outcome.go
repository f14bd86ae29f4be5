package contracts

import "fmt"

// Outcome is the per-symbol result of applying a score model.
// Exactly one variant holds: an included outcome carries component
// values and no reasons, an excluded outcome carries at least one
// reason and no components. Use the constructors to keep it that way.
type Outcome struct {
	Symbol     string             `json:"symbol"`
	Components map[string]float64 `json:"components,omitempty"`
	Reasons    []string           `json:"reasons,omitempty"`
}

// Included builds an outcome that participates in ranking.
func Included(symbol string, components map[string]float64) Outcome {
	return Outcome{Symbol: symbol, Components: components}
}

// Excluded builds an outcome removed from ranking. Reasons keep the
// order in which the checks fired.
func Excluded(symbol string, reasons ...string) Outcome {
	return Outcome{Symbol: symbol, Reasons: reasons}
}

// IsIncluded reports whether the symbol participates in ranking.
func (o Outcome) IsIncluded() bool {
	return len(o.Reasons) == 0
}

// Component returns a named component value.
func (o Outcome) Component(name string) (float64, bool) {
	v, ok := o.Components[name]
	return v, ok
}

// Canonical exclusion reasons. Reports and stored runs rely on these
// exact strings, so models build reasons only through them.
const (
	ReasonDivisionByZero           = "division by zero"
	ReasonInsufficientDividendData = "insufficient dividend data"
)

// MissingMetricReason names a metric the provider could not supply.
func MissingMetricReason(metric string) string {
	return fmt.Sprintf("missing metric: %s", metric)
}

// ProviderErrorReason wraps a fetch failure as an exclusion reason.
func ProviderErrorReason(err error) string {
	return fmt.Sprintf("provider error: %v", err)
}
