package marketdata

import (
	"context"
	"errors"

	"github.com/rustyeddy/daytrader/market"
)

// ErrUnavailable means no snapshot could be produced for the symbol this
// cycle. The scan loop skips the symbol; it is not retried mid-cycle.
var ErrUnavailable = errors.New("snapshot unavailable")

// Provider supplies a fresh point-in-time snapshot per symbol.
// Implementations must honor the context deadline.
type Provider interface {
	FetchSnapshot(ctx context.Context, symbol string) (market.Snapshot, error)
}
