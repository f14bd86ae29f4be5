package screen

import (
	"math"
	"sort"
	"time"

	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/internal/fundamentals"
)

// Dividend scores companies on payout level and payout persistence:
// current yield plus the number of consecutive calendar years with at
// least one recorded payment, counted from the earliest year on file.
type Dividend struct{}

// NewDividend creates a dividend quality model.
func NewDividend() *Dividend {
	return &Dividend{}
}

// Name implements Model.
func (m *Dividend) Name() string { return ModelDividend }

// Ranking implements Model.
func (m *Dividend) Ranking() contracts.RankingSpec {
	return contracts.RankingSpec{
		Method:     contracts.RankByCombined,
		Components: []string{ComponentDividendYield, ComponentConsecutiveYears},
	}
}

// Score implements Model. A missing yield or price counts as zero, so
// non-payers and symbols without quote data fall out under the same
// reason as symbols with no payment history.
func (m *Dividend) Score(snap *fundamentals.Snapshot) contracts.Outcome {
	yield := deref(snap.DividendYield)
	price := deref(snap.CurrentPrice)
	if yield == 0 || price == 0 || len(snap.DividendDates) == 0 {
		return contracts.Excluded(snap.Symbol, contracts.ReasonInsufficientDividendData)
	}

	return contracts.Included(snap.Symbol, map[string]float64{
		ComponentDividendYield:    roundPercent(yield),
		ComponentConsecutiveYears: float64(consecutiveYears(snap.DividendDates)),
	})
}

// consecutiveYears counts the run of distinct payment years that
// starts at the earliest recorded year and stops at the first gap.
// {2019, 2020, 2021, 2023} is 3: the run ends before 2023 even though
// a later payment exists. At least 1 for a non-empty history.
func consecutiveYears(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	seen := make(map[int]struct{}, len(dates))
	years := make([]int, 0, len(dates))
	for _, d := range dates {
		y := d.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)

	run := 1
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			break
		}
		run++
	}
	return run
}

// roundPercent converts a fractional yield to a percentage rounded to
// two decimals, the form the component is ranked and displayed in.
func roundPercent(fraction float64) float64 {
	return math.Round(fraction*100*100) / 100
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
