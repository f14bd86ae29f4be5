package universe

import (
	"context"
	"errors"
)

// ErrUnavailable means the constituent list could not be obtained.
// A screening run cannot proceed without a universe, so callers treat
// any error carrying this sentinel as fatal for the whole run.
var ErrUnavailable = errors.New("universe unavailable")

// Source yields the ordered, deduplicated symbol universe for a run.
type Source interface {
	Symbols(ctx context.Context) ([]string, error)
}
