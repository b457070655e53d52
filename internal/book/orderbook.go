// Package book tracks per-asset order books built from realtime channel
// messages.
package book

import (
	"time"

	"github.com/google/btree"

	"polyfeed/internal/price"
)

// Side selects the bid or ask tree of a book.
type Side string

const (
	Bids Side = "bids"
	Asks Side = "asks"
)

// Level is one price level of an order book.
type Level struct {
	Price price.Price
	Size  price.Size
	// UpdatedAt is the event time from the source, not ingestion time.
	UpdatedAt time.Time
}

func lessAsc(a, b Level) bool {
	return a.Price < b.Price
}

func lessDesc(a, b Level) bool {
	return a.Price > b.Price
}

// Orderbook maintains sorted bid and ask levels. Bids are ordered highest
// price first, asks lowest first.
type Orderbook struct {
	bids *btree.BTreeG[Level]
	asks *btree.BTreeG[Level]
}

func New() *Orderbook {
	return &Orderbook{
		bids: btree.NewG(32, lessDesc),
		asks: btree.NewG(32, lessAsc),
	}
}

// Set stores an absolute size at a price level; size <= 0 removes the level.
func (ob *Orderbook) Set(side Side, p price.Price, size price.Size, eventTime time.Time) {
	tree := ob.tree(side)
	if tree == nil {
		return
	}
	if size <= 0 {
		tree.Delete(Level{Price: p})
		return
	}
	tree.ReplaceOrInsert(Level{Price: p, Size: size, UpdatedAt: eventTime})
}

// Replace discards one side and installs the given levels, as a book
// snapshot message requires.
func (ob *Orderbook) Replace(side Side, levels []Level) {
	switch side {
	case Bids:
		ob.bids = btree.NewG(32, lessDesc)
	case Asks:
		ob.asks = btree.NewG(32, lessAsc)
	default:
		return
	}
	tree := ob.tree(side)
	for _, lvl := range levels {
		if lvl.Size > 0 {
			tree.ReplaceOrInsert(lvl)
		}
	}
}

// TopN returns up to n best levels for a side: highest bids or lowest asks
// first.
func (ob *Orderbook) TopN(side Side, n int) []Level {
	tree := ob.tree(side)
	if tree == nil {
		return nil
	}
	levels := make([]Level, 0, min(n, tree.Len()))
	tree.Ascend(func(lvl Level) bool {
		levels = append(levels, lvl)
		return len(levels) < n
	})
	return levels
}

// Best returns the best level of a side, if the side is non-empty.
func (ob *Orderbook) Best(side Side) (Level, bool) {
	top := ob.TopN(side, 1)
	if len(top) == 0 {
		return Level{}, false
	}
	return top[0], true
}

// Len returns the number of levels on a side.
func (ob *Orderbook) Len(side Side) int {
	tree := ob.tree(side)
	if tree == nil {
		return 0
	}
	return tree.Len()
}

func (ob *Orderbook) tree(side Side) *btree.BTreeG[Level] {
	switch side {
	case Bids:
		return ob.bids
	case Asks:
		return ob.asks
	default:
		return nil
	}
}
