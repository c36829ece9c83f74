package scan

import (
	"fmt"

	"github.com/rustyeddy/daytrader/market"
)

// Rejection reason codes surfaced by the filter stage.
const (
	ReasonNoData          = "NoData"
	ReasonPriceOutOfRange = "PriceOutOfRange"
	ReasonVolumeTooLow    = "VolumeTooLow"
	ReasonRelVolumeTooLow = "RelVolumeTooLow"
	ReasonSpreadTooWide   = "SpreadTooWide"
)

// Filters holds the static liquidity and price gates applied to every
// symbol before scoring.
type Filters struct {
	MinPrice     float64
	MaxPrice     float64
	MinVolume    float64
	MinRelVolume float64
	MaxSpreadPct float64
}

// FilterResult reports whether a snapshot passed the liquidity gate, and
// the first failed check when it did not.
type FilterResult struct {
	Admit  bool
	Reason string
	Detail string
}

// Filter applies the static liquidity gates to a snapshot. It is a total
// function: a nil snapshot (unavailable data) is rejected with NoData
// rather than treated as an error.
func Filter(snap *market.Snapshot, f Filters) FilterResult {
	if snap == nil {
		return FilterResult{Reason: ReasonNoData}
	}
	if snap.LastPrice < f.MinPrice || snap.LastPrice > f.MaxPrice {
		return FilterResult{
			Reason: ReasonPriceOutOfRange,
			Detail: fmt.Sprintf("price %.2f outside [%.2f, %.2f]", snap.LastPrice, f.MinPrice, f.MaxPrice),
		}
	}
	if snap.Volume < f.MinVolume {
		return FilterResult{
			Reason: ReasonVolumeTooLow,
			Detail: fmt.Sprintf("volume %.0f below %.0f", snap.Volume, f.MinVolume),
		}
	}
	if snap.RelVolume() < f.MinRelVolume {
		return FilterResult{
			Reason: ReasonRelVolumeTooLow,
			Detail: fmt.Sprintf("rel volume %.2f below %.2f", snap.RelVolume(), f.MinRelVolume),
		}
	}
	if snap.SpreadPct > f.MaxSpreadPct {
		return FilterResult{
			Reason: ReasonSpreadTooWide,
			Detail: fmt.Sprintf("spread %.4f above %.4f", snap.SpreadPct, f.MaxSpreadPct),
		}
	}
	return FilterResult{Admit: true}
}
