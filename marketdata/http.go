package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/daytrader/market"
)

// HTTPClient polls a quote service for per-symbol snapshots.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// snapshotPayload is the wire shape of the quote service response.
type snapshotPayload struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	Volume     float64 `json:"volume"`
	AvgVolume  float64 `json:"avg_volume"`
	SpreadPct  float64 `json:"spread_pct"`
	VWAP       float64 `json:"vwap"`
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
	Timestamp  int64   `json:"timestamp"`
}

func (c *HTTPClient) FetchSnapshot(ctx context.Context, symbol string) (market.Snapshot, error) {
	u := fmt.Sprintf("%s/v1/snapshot?symbol=%s", c.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return market.Snapshot{}, fmt.Errorf("snapshot request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return market.Snapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return market.Snapshot{}, fmt.Errorf("%w: status %d for %s", ErrUnavailable, resp.StatusCode, symbol)
	}

	var p snapshotPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return market.Snapshot{}, fmt.Errorf("%w: decode snapshot: %v", ErrUnavailable, err)
	}
	if p.Price <= 0 {
		return market.Snapshot{}, fmt.Errorf("%w: no price for %s", ErrUnavailable, symbol)
	}

	return market.Snapshot{
		Symbol:     symbol,
		LastPrice:  p.Price,
		Volume:     p.Volume,
		AvgVolume:  p.AvgVolume,
		SpreadPct:  p.SpreadPct,
		VWAP:       p.VWAP,
		Support:    p.Support,
		Resistance: p.Resistance,
		Time:       time.Unix(p.Timestamp, 0).UTC(),
	}, nil
}
