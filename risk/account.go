package risk

// AccountState is the single mutable account aggregate. All mutation goes
// through Manager methods; callers only ever see copies.
type AccountState struct {
	StartingBalance float64
	Cash            float64 // includes the untouchable reserve
	Reserve         float64 // cash floor, never allocated to positions
	RealizedToday   float64
	SectorAlloc     map[string]float64 // allocated capital per sector
	OpenPositions   int
	BreakerTripped  bool
}

// Allocated returns the total capital currently tied up in open positions.
func (a AccountState) Allocated() float64 {
	var sum float64
	for _, v := range a.SectorAlloc {
		sum += v
	}
	return sum
}

// Equity is the account book value: free cash plus allocated capital.
func (a AccountState) Equity() float64 {
	return a.Cash + a.Allocated()
}

// SizableEquity is equity excluding the cash reserve; position sizing and
// the min/max position bounds are expressed against this figure.
func (a AccountState) SizableEquity() float64 {
	return a.Equity() - a.Reserve
}

// AvailableCash is what can still be reserved for new positions.
func (a AccountState) AvailableCash() float64 {
	return a.Cash - a.Reserve
}

func (a AccountState) clone() AccountState {
	out := a
	out.SectorAlloc = make(map[string]float64, len(a.SectorAlloc))
	for k, v := range a.SectorAlloc {
		out.SectorAlloc[k] = v
	}
	return out
}
