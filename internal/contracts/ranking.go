package contracts

// RankMethod selects how a model's components turn into a final order.
type RankMethod string

const (
	// RankByCombined ranks each component descending with fractional
	// (average-method) ranks, then orders by the mean of those ranks.
	RankByCombined RankMethod = "combined"

	// RankByScore orders directly by the single raw component value,
	// descending. Used by models whose score is already a composite.
	RankByScore RankMethod = "score"
)

// RankingSpec declares how a model wants its outcomes ranked.
// Components lists the component names in presentation order; every
// included outcome must carry a value for each of them.
type RankingSpec struct {
	Method     RankMethod `json:"method"`
	Components []string   `json:"components"`
}

// Row is one ranked symbol in a finished screen.
type Row struct {
	Symbol string `json:"symbol"`

	// Rank is the dense 1-based final position.
	Rank int `json:"rank"`

	// Components holds the model's raw component values.
	Components map[string]float64 `json:"components"`

	// FractionalRanks holds the per-component descending ranks for
	// RankByCombined models. Empty for RankByScore models.
	FractionalRanks map[string]float64 `json:"fractional_ranks,omitempty"`

	// CombinedRank is the mean of the fractional ranks. Zero for
	// RankByScore models.
	CombinedRank float64 `json:"combined_rank,omitempty"`
}

// RunStats summarizes symbol disposition for a finished screen.
type RunStats struct {
	TotalSymbols int `json:"total_symbols"`
	Included     int `json:"included"`
	Excluded     int `json:"excluded"`

	// Reasons maps each excluded symbol to its exclusion reasons.
	Reasons map[string][]string `json:"reasons,omitempty"`
}
