package marketdata

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/daytrader/market"
)

// StreamProvider keeps the latest snapshot per symbol from a websocket quote
// feed. FetchSnapshot never blocks on the network: it serves the cached
// snapshot or reports ErrUnavailable, so a stalled feed only costs the
// affected symbols their cycle.
type StreamProvider struct {
	url string

	mu     sync.RWMutex
	latest map[string]market.Snapshot

	staleAfter time.Duration
}

func NewStreamProvider(url string, staleAfter time.Duration) *StreamProvider {
	return &StreamProvider{
		url:        url,
		latest:     make(map[string]market.Snapshot),
		staleAfter: staleAfter,
	}
}

// Run connects to the feed and consumes quote messages until the context is
// cancelled, reconnecting with a fixed backoff on read errors. Meant to run
// in its own goroutine.
func (s *StreamProvider) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil {
			log.Printf("[WARN] quote stream: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *StreamProvider) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var p snapshotPayload
		if err := conn.ReadJSON(&p); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if p.Symbol == "" || p.Price <= 0 {
			continue
		}
		s.mu.Lock()
		s.latest[p.Symbol] = market.Snapshot{
			Symbol:     p.Symbol,
			LastPrice:  p.Price,
			Volume:     p.Volume,
			AvgVolume:  p.AvgVolume,
			SpreadPct:  p.SpreadPct,
			VWAP:       p.VWAP,
			Support:    p.Support,
			Resistance: p.Resistance,
			Time:       time.Unix(p.Timestamp, 0).UTC(),
		}
		s.mu.Unlock()
	}
}

func (s *StreamProvider) FetchSnapshot(ctx context.Context, symbol string) (market.Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.latest[symbol]
	s.mu.RUnlock()

	if !ok {
		return market.Snapshot{}, fmt.Errorf("%w: no quote seen for %s", ErrUnavailable, symbol)
	}
	if s.staleAfter > 0 && time.Since(snap.Time) > s.staleAfter {
		return market.Snapshot{}, fmt.Errorf("%w: quote for %s is stale", ErrUnavailable, symbol)
	}
	return snap, nil
}
