package advisory

import (
	"context"
	"errors"

	"github.com/rustyeddy/daytrader/market"
)

// ErrUnavailable means no advisory confidence could be produced this cycle.
// Callers score without the advisory term; admission is never blocked on it.
var ErrUnavailable = errors.New("advisory unavailable")

// Advisor produces an external confidence estimate (0-100) for a setup.
// Implementations must honor the context deadline.
type Advisor interface {
	Confidence(ctx context.Context, snap market.Snapshot) (float64, error)
}

// Disabled is the advisor used when advisory scoring is turned off.
type Disabled struct{}

func (Disabled) Confidence(context.Context, market.Snapshot) (float64, error) {
	return 0, ErrUnavailable
}
