package fundamentals

import (
	"context"
)

// Provider fetches a fundamentals snapshot for one symbol. An error
// covers the whole fetch; the pipeline converts it into an excluded
// outcome for that symbol and the run continues.
type Provider interface {
	Snapshot(ctx context.Context, symbol string) (*Snapshot, error)
}
