package orderbook

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"limitbook/internal/exchange/common"
	"limitbook/internal/tree"
)

var ErrUnknownSide = errors.New("unknown order side")

// Book holds the buy and sell price levels of one product. Both trees are
// ascending by price; the best bid is the buy tree's maximum and the best ask
// the sell tree's minimum.
type Book struct {
	Product   string
	FetchedAt time.Time
	Buy       *tree.Tree[Limit]
	Sell      *tree.Tree[Limit]
}

func NewBook(product string) *Book {
	return &Book{
		Product: product,
		Buy:     tree.New(compareLimits),
		Sell:    tree.New(compareLimits),
	}
}

// ToLimits turns aggregated snapshot rows into limits. A row only carries the
// level's total size and its order count, so each of the NumOrders synthesized
// orders is given the level's total size. Order counts are exact; per-order
// sizes are not, so the row's size is also kept as the level's QuotedSize.
// Counts outside [0, common.MaxLevelOrders] are clamped.
func ToLimits(rows []common.AggregatedOrder) []Limit {
	out := make([]Limit, 0, len(rows))
	for _, r := range rows {
		n := min(max(r.NumOrders, 0), common.MaxLevelOrders)
		orders := make([]Order, n)
		for i := range orders {
			orders[i] = Order{Price: r.Price, Size: r.Size}
		}
		out = append(out, Limit{Price: r.Price, Orders: orders, Quoted: n, QuotedSize: r.Size})
	}
	return out
}

// Get fetches a snapshot for product from p and bulk-loads each side into its
// own tree. Venues send bids best (highest) first, so both sides are sorted
// ascending before loading. Any fetch or decode error is returned as is and no
// Book is built; Get never retries.
func Get(ctx context.Context, p common.SnapshotProvider, product string) (*Book, error) {
	snap, err := p.GetSnapshot(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("get book %s from %s: %w", product, p.Name(), err)
	}
	return FromSnapshot(product, snap), nil
}

// FromSnapshot builds a Book from an already decoded snapshot.
func FromSnapshot(product string, snap common.Snapshot) *Book {
	b := NewBook(product)
	b.FetchedAt = time.Now()
	b.Buy.PopulateFromSorted(tree.None, sortedLimits(snap.Bids))
	b.Sell.PopulateFromSorted(tree.None, sortedLimits(snap.Asks))
	return b
}

func sortedLimits(rows []common.AggregatedOrder) []Limit {
	limits := ToLimits(rows)
	slices.SortStableFunc(limits, compareLimits)
	return limits
}

// Add rests o on the given side: the level at o's price is located, or created
// as a new leaf if none exists, and o is appended to it. The tree is not
// rebalanced.
func (b *Book) Add(side Side, o Order) error {
	t, err := b.side(side)
	if err != nil {
		return err
	}
	l := t.Add(Limit{Price: o.Price}, 0)
	l.Orders = append(l.Orders, o)
	return nil
}

// Levels yields the side's limits in ascending price order.
func (b *Book) Levels(side Side) iter.Seq[Limit] {
	t, err := b.side(side)
	if err != nil {
		return func(func(Limit) bool) {}
	}
	return t.InOrder(0)
}

// BestBid returns the highest buy level.
func (b *Book) BestBid() (Limit, bool) {
	return extreme(b.Buy, func(n tree.Node[Limit]) tree.Index { return n.Right })
}

// BestAsk returns the lowest sell level.
func (b *Book) BestAsk() (Limit, bool) {
	return extreme(b.Sell, func(n tree.Node[Limit]) tree.Index { return n.Left })
}

func extreme(t *tree.Tree[Limit], next func(tree.Node[Limit]) tree.Index) (Limit, bool) {
	n, ok := t.At(0)
	if !ok {
		return Limit{}, false
	}
	for {
		c, ok := t.At(next(n))
		if !ok {
			return n.Value, true
		}
		n = c
	}
}

func (b *Book) side(s Side) (*tree.Tree[Limit], error) {
	switch s {
	case Buy:
		return b.Buy, nil
	case Sell:
		return b.Sell, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSide, s)
}
