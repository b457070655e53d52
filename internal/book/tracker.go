package book

import (
	"log/slog"
	"sync"
	"time"

	"polyfeed/internal/realtime"
)

// Tracker keeps one order book per asset id, fed from market channel
// messages. Apply is safe to call from the channel callback while snapshots
// are read elsewhere.
type Tracker struct {
	mu     sync.RWMutex
	books  map[string]*Orderbook
	logger *slog.Logger
}

func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		books:  make(map[string]*Orderbook),
		logger: logger.With("component", "book_tracker"),
	}
}

// Apply folds one channel message into the tracked books. Messages that
// carry no book state (trades, resolutions, ...) are ignored.
func (t *Tracker) Apply(msg *realtime.Message) {
	switch msg.EventType {
	case realtime.BookEvent:
		t.applyBook(msg.Book)
	case realtime.PriceChangeEvent:
		t.applyPriceChange(msg.PriceChange)
	}
}

func (t *Tracker) applyBook(b *realtime.BookMessage) {
	eventTime := time.UnixMilli(int64(b.Timestamp))

	bids := make([]Level, 0, len(b.Bids))
	for _, lvl := range b.Bids {
		bids = append(bids, Level{Price: lvl.Price, Size: lvl.Size, UpdatedAt: eventTime})
	}
	asks := make([]Level, 0, len(b.Asks))
	for _, lvl := range b.Asks {
		asks = append(asks, Level{Price: lvl.Price, Size: lvl.Size, UpdatedAt: eventTime})
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	ob := t.book(b.AssetID)
	ob.Replace(Bids, bids)
	ob.Replace(Asks, asks)
}

func (t *Tracker) applyPriceChange(pc *realtime.PriceChangeMessage) {
	eventTime := time.UnixMilli(int64(pc.Timestamp))

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, change := range pc.PriceChanges {
		side := Asks
		if change.Side == realtime.Buy {
			side = Bids
		}
		t.book(change.AssetID).Set(side, change.Price, change.Size, eventTime)
	}
}

// book returns the order book for assetID, creating it on first use.
// Callers must hold mu.
func (t *Tracker) book(assetID string) *Orderbook {
	ob, ok := t.books[assetID]
	if !ok {
		ob = New()
		t.books[assetID] = ob
		t.logger.Debug("tracking new asset", "asset_id", assetID)
	}
	return ob
}

// Snapshot captures the top levels of one asset's book.
type Snapshot struct {
	AssetID string
	Bids    []Level
	Asks    []Level
}

// TopN returns a snapshot of the top n levels for one asset.
func (t *Tracker) TopN(assetID string, n int) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ob, ok := t.books[assetID]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		AssetID: assetID,
		Bids:    ob.TopN(Bids, n),
		Asks:    ob.TopN(Asks, n),
	}, true
}

// Snapshots returns top-n snapshots for every tracked asset.
func (t *Tracker) Snapshots(n int) []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snapshots := make([]Snapshot, 0, len(t.books))
	for assetID, ob := range t.books {
		snapshots = append(snapshots, Snapshot{
			AssetID: assetID,
			Bids:    ob.TopN(Bids, n),
			Asks:    ob.TopN(Asks, n),
		})
	}
	return snapshots
}
