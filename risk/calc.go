package risk

import "math"

// ShareCount converts target capital into a share count at the given price,
// rounded down to the nearest multiple of increment. Returns 0 when the
// capital cannot buy a full increment.
func ShareCount(capital, price float64, increment int) int {
	if price <= 0 || capital <= 0 {
		return 0
	}
	if increment < 1 {
		increment = 1
	}
	shares := int(math.Floor(capital / price))
	return shares - shares%increment
}

// RealizedPL computes the realized profit or loss for a closed position.
// Longs profit when exit exceeds entry; shorts mirror.
func RealizedPL(short bool, entry, exit float64, shares int) float64 {
	pl := (exit - entry) * float64(shares)
	if short {
		return -pl
	}
	return pl
}

func clampCapital(capital, lo, hi float64) float64 {
	return math.Min(math.Max(capital, lo), hi)
}
