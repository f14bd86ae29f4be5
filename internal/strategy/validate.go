package strategy

import "fmt"

// ValidationError names the offending field so a bad strategy file is
// fixable from the error message alone.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the constraints a runnable strategy must satisfy.
// The first violation is returned; the run does not start on any.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	if cfg.Screen.Top < 1 {
		return ValidationError{"screen.top", "must be >= 1"}
	}
	if cfg.Screen.Workers < 1 {
		return ValidationError{"screen.workers", "must be >= 1"}
	}

	// All-zero weights would tie every symbol at score 0.
	w := cfg.Factor.Weights
	if w.PERatio == 0 && w.ReturnOnEquity == 0 && w.DebtToEquity == 0 && w.DividendYield == 0 {
		return ValidationError{"factor.weights", "at least one weight must be non-zero"}
	}

	return nil
}
