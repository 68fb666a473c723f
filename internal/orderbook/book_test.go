package orderbook

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"limitbook/internal/exchange/common"
	"limitbook/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	snap  common.Snapshot
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) GetSnapshot(ctx context.Context, product string) (common.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func prices(seq func(func(Limit) bool)) []string {
	var out []string
	for l := range seq {
		out = append(out, l.Price)
	}
	return out
}

func TestToLimits(t *testing.T) {
	limits := ToLimits([]common.AggregatedOrder{
		{Price: "100", Size: "2", NumOrders: 2},
		{Price: "101", Size: "0.5", NumOrders: 0},
	})

	require.Len(t, limits, 2)
	assert.Equal(t, "100", limits[0].Price)
	assert.Equal(t, []Order{{Price: "100", Size: "2"}, {Price: "100", Size: "2"}}, limits[0].Orders)
	assert.Empty(t, limits[1].Orders)
	assert.Equal(t, 2, limits[0].Quoted)
	assert.Equal(t, "0.5", limits[1].Size().String())
}

func TestToLimits_ClampsOrderCount(t *testing.T) {
	limits := ToLimits([]common.AggregatedOrder{
		{Price: "100", Size: "2", NumOrders: 1 << 62},
		{Price: "101", Size: "1", NumOrders: -3},
	})

	require.Len(t, limits, 2)
	assert.Len(t, limits[0].Orders, common.MaxLevelOrders)
	assert.Equal(t, "2", limits[0].Size().String())
	assert.Empty(t, limits[1].Orders)
}

func TestLevelSize_QuotedPlusAdded(t *testing.T) {
	b := FromSnapshot("X", common.Snapshot{
		Bids: []common.AggregatedOrder{{Price: "100", Size: "2", NumOrders: 5}},
	})
	s := b.Summary()
	assert.Equal(t, 5, s.Bids.Orders)
	assert.Equal(t, "2", s.Bids.Size)

	require.NoError(t, b.Add(Buy, Order{Price: "100", Size: "0.25"}))
	require.NoError(t, b.Add(Buy, Order{Price: "99", Size: "1"}))

	s = b.Summary()
	assert.Equal(t, 7, s.Bids.Orders)
	assert.Equal(t, "3.25", s.Bids.Size)
	top, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, "2.25", top.Size().String())
}

func TestGet_SingleBid(t *testing.T) {
	p := &fakeProvider{snap: common.Snapshot{
		Bids: []common.AggregatedOrder{{Price: "100", Size: "2", NumOrders: 2}},
	}}

	b, err := Get(context.Background(), p, "ETH-GBP")
	require.NoError(t, err)

	require.Equal(t, 1, b.Buy.Len())
	assert.Equal(t, 0, b.Sell.Len())
	l, ok := b.Buy.ValAt(0)
	require.True(t, ok)
	require.Len(t, l.Orders, 2)
	for _, o := range l.Orders {
		assert.Equal(t, Order{Price: "100", Size: "2"}, o)
	}
	n, _ := b.Buy.At(0)
	assert.Equal(t, tree.None, n.Parent)
	assert.Equal(t, "ETH-GBP", b.Product)
	assert.False(t, b.FetchedAt.IsZero())
}

func TestGet_PropagatesFetchError(t *testing.T) {
	cause := &common.FetchError{Kind: common.KindNetwork, Product: "ETH-GBP", Err: errors.New("connection refused")}
	p := &fakeProvider{err: cause}

	b, err := Get(context.Background(), p, "ETH-GBP")
	require.Error(t, err)
	assert.Nil(t, b)
	assert.Equal(t, common.KindNetwork, common.KindOf(err))
	assert.Equal(t, 1, p.calls, "assembler must not retry")
}

func TestGet_SortsSidesAscending(t *testing.T) {
	p := &fakeProvider{snap: common.Snapshot{
		Bids: []common.AggregatedOrder{
			{Price: "10", Size: "1", NumOrders: 1},
			{Price: "9.5", Size: "1", NumOrders: 1},
			{Price: "9", Size: "1", NumOrders: 1},
		},
		Asks: []common.AggregatedOrder{
			{Price: "10.5", Size: "1", NumOrders: 1},
			{Price: "11", Size: "1", NumOrders: 1},
			{Price: "100", Size: "1", NumOrders: 1},
		},
	}}

	b, err := Get(context.Background(), p, "X")
	require.NoError(t, err)

	assert.Equal(t, []string{"9", "9.5", "10"}, prices(b.Levels(Buy)))
	assert.Equal(t, []string{"10.5", "11", "100"}, prices(b.Levels(Sell)))

	root, _ := b.Buy.ValAt(0)
	assert.Equal(t, "9.5", root.Price)

	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, "10", bid.Price)
	ask, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "10.5", ask.Price)
}

func TestAdd_AggregatesAtExistingLevel(t *testing.T) {
	b := FromSnapshot("X", common.Snapshot{
		Bids: []common.AggregatedOrder{
			{Price: "9", Size: "1", NumOrders: 1},
			{Price: "10", Size: "1", NumOrders: 1},
			{Price: "11", Size: "1", NumOrders: 3},
		},
	})

	require.NoError(t, b.Add(Buy, Order{Price: "9", Size: "0.1"}))
	require.NoError(t, b.Add(Buy, Order{Price: "9.00", Size: "0.2"}))

	assert.Equal(t, 3, b.Buy.Len())
	for l := range b.Levels(Buy) {
		if l.Price == "9" {
			assert.Len(t, l.Orders, 3)
			assert.Equal(t, "0.2", l.Orders[2].Size)
		}
	}
}

func TestAdd_CreatesLevels(t *testing.T) {
	b := NewBook("X")

	require.NoError(t, b.Add(Sell, Order{Price: "10", Size: "1"}))
	require.NoError(t, b.Add(Sell, Order{Price: "9", Size: "1"}))
	require.NoError(t, b.Add(Sell, Order{Price: "12", Size: "1"}))
	require.NoError(t, b.Add(Sell, Order{Price: "12", Size: "2"}))

	n, ok := b.Sell.At(0)
	require.True(t, ok)
	assert.Equal(t, "10", n.Value.Price)
	assert.Equal(t, tree.None, n.Parent)
	assert.Equal(t, 3, b.Sell.Len())
	assert.Equal(t, []string{"9", "10", "12"}, prices(b.Levels(Sell)))
	assert.Equal(t, 0, b.Buy.Len())

	top, _ := b.Sell.ValAt(2)
	assert.Len(t, top.Orders, 2)
}

func TestAdd_UnknownSide(t *testing.T) {
	b := NewBook("X")
	err := b.Add(Side("short"), Order{Price: "1", Size: "1"})
	assert.ErrorIs(t, err, ErrUnknownSide)
	assert.Empty(t, slices.Collect(b.Levels(Side("short"))))
}

func TestComparePrices(t *testing.T) {
	assert.Negative(t, ComparePrices("9", "10"))
	assert.Zero(t, ComparePrices("100", "100.00"))
	assert.Positive(t, ComparePrices("0.5", "0.05"))
	assert.Negative(t, ComparePrices("1000", "abc"))
	assert.Positive(t, ComparePrices("abc", "5"))
	assert.Negative(t, ComparePrices("abc", "abd"))
}

func TestSummaryAndDump(t *testing.T) {
	b := FromSnapshot("ETH-GBP", common.Snapshot{
		Bids: []common.AggregatedOrder{{Price: "100", Size: "2", NumOrders: 2}},
		Asks: []common.AggregatedOrder{
			{Price: "101", Size: "1.5", NumOrders: 1},
			{Price: "102", Size: "3", NumOrders: 1},
		},
	})

	s := b.Summary()
	assert.Equal(t, "100", s.BestBid)
	assert.Equal(t, "101", s.BestAsk)
	assert.Equal(t, SideStats{Levels: 1, Orders: 2, Size: "2"}, s.Bids)
	assert.Equal(t, SideStats{Levels: 2, Orders: 2, Size: "4.5"}, s.Asks)

	out := b.String()
	assert.True(t, strings.HasPrefix(out, "book ETH-GBP\n"))
	assert.Contains(t, out, "buy (1 levels)\n  #0 100 orders=2 left=- right=- parent=-\n")
	assert.Contains(t, out, "sell (2 levels)\n  #0 102 orders=1 left=1 right=- parent=-\n  #1 101 orders=1 left=- right=- parent=0\n")
}

func TestSummary_EmptyBook(t *testing.T) {
	s := NewBook("X").Summary()
	assert.Empty(t, s.BestBid)
	assert.Empty(t, s.BestAsk)
	assert.Equal(t, "0", s.Bids.Size)
}
