package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/pkg/logger"
)

// Engine combines score outcomes into the final order. Ranking is a
// whole-batch computation: fractional ranks depend on every included
// value, so the engine must only run after all symbols have resolved.
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a ranking engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Rank turns outcomes into ranked rows plus run statistics. Outcomes
// must arrive in universe order: ties keep that order, which makes the
// result deterministic for a given universe. Zero included symbols is
// a valid terminal state and returns empty rows with populated stats.
func (e *Engine) Rank(ctx context.Context, outcomes []contracts.Outcome, spec contracts.RankingSpec) ([]contracts.Row, contracts.RunStats, error) {
	stats := contracts.RunStats{
		TotalSymbols: len(outcomes),
		Reasons:      make(map[string][]string),
	}

	included := make([]contracts.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.IsIncluded() {
			included = append(included, o)
			continue
		}
		stats.Reasons[o.Symbol] = o.Reasons
	}
	stats.Included = len(included)
	stats.Excluded = len(outcomes) - len(included)

	rows := make([]contracts.Row, len(included))
	for i, o := range included {
		if err := requireComponents(o, spec.Components); err != nil {
			return nil, stats, err
		}
		rows[i] = contracts.Row{Symbol: o.Symbol, Components: o.Components}
	}

	switch spec.Method {
	case contracts.RankByScore:
		if len(spec.Components) != 1 {
			return nil, stats, fmt.Errorf("rank method %q needs exactly one component, got %d", spec.Method, len(spec.Components))
		}
		name := spec.Components[0]
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Components[name] > rows[j].Components[name]
		})

	case contracts.RankByCombined:
		e.combine(rows, spec.Components)
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].CombinedRank < rows[j].CombinedRank
		})

	default:
		return nil, stats, fmt.Errorf("unknown rank method %q", spec.Method)
	}

	for i := range rows {
		rows[i].Rank = i + 1
	}

	fields := map[string]interface{}{
		"total":    stats.TotalSymbols,
		"included": stats.Included,
		"excluded": stats.Excluded,
	}
	if len(rows) > 0 {
		fields["top_symbol"] = rows[0].Symbol
	}
	e.logger.WithFields(fields).Info("Ranking completed")

	return rows, stats, nil
}

// combine assigns per-component fractional ranks and their mean to
// each row, in place. Rows are still in universe order here.
func (e *Engine) combine(rows []contracts.Row, components []string) {
	for _, name := range components {
		values := make([]float64, len(rows))
		for i := range rows {
			values[i] = rows[i].Components[name]
		}
		ranks := fractionalRanks(values)
		for i := range rows {
			if rows[i].FractionalRanks == nil {
				rows[i].FractionalRanks = make(map[string]float64, len(components))
			}
			rows[i].FractionalRanks[name] = ranks[i]
		}
	}

	for i := range rows {
		sum := 0.0
		for _, name := range components {
			sum += rows[i].FractionalRanks[name]
		}
		rows[i].CombinedRank = sum / float64(len(components))
	}
}

// fractionalRanks assigns descending average-method ranks: the highest
// value gets rank 1 and exactly equal values share the arithmetic mean
// of the positions they span, so two symbols tied for best both get
// 1.5 rather than an arbitrary 1 and 2. Result order matches input
// order.
func fractionalRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	ranks := make([]float64, n)
	for start := 0; start < n; {
		end := start + 1
		for end < n && values[order[end]] == values[order[start]] {
			end++
		}
		// 1-based positions start+1 .. end share their mean.
		mean := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[order[k]] = mean
		}
		start = end
	}
	return ranks
}

func requireComponents(o contracts.Outcome, components []string) error {
	for _, name := range components {
		if _, ok := o.Component(name); !ok {
			return fmt.Errorf("symbol %s: included outcome has no %q component", o.Symbol, name)
		}
	}
	return nil
}
