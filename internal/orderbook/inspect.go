package orderbook

import (
	"fmt"
	"io"
	"strings"
	"time"

	"limitbook/internal/tree"

	"github.com/shopspring/decimal"
)

// Summary is the compact view of a Book published downstream and served by
// the admin API.
type Summary struct {
	Product   string    `json:"product"`
	FetchedAt time.Time `json:"fetched_at"`
	BestBid   string    `json:"best_bid,omitempty"`
	BestAsk   string    `json:"best_ask,omitempty"`
	Bids      SideStats `json:"bids"`
	Asks      SideStats `json:"asks"`
}

type SideStats struct {
	Levels int    `json:"levels"`
	Orders int    `json:"orders"`
	Size   string `json:"size"`
}

func (b *Book) Summary() Summary {
	s := Summary{
		Product:   b.Product,
		FetchedAt: b.FetchedAt,
		Bids:      stats(b.Buy),
		Asks:      stats(b.Sell),
	}
	if l, ok := b.BestBid(); ok {
		s.BestBid = l.Price
	}
	if l, ok := b.BestAsk(); ok {
		s.BestAsk = l.Price
	}
	return s
}

func stats(t *tree.Tree[Limit]) SideStats {
	st := SideStats{Levels: t.Len()}
	size := decimal.Zero
	for n := range t.All() {
		st.Orders += len(n.Value.Orders)
		size = size.Add(n.Value.Size())
	}
	st.Size = size.String()
	return st
}

// Dump writes every node of both trees in arena order, one per line:
//
//	#<index> <price> orders=<n> left=<i> right=<i> parent=<i>
//
// Absent links print as "-".
func (b *Book) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "book %s\n", b.Product); err != nil {
		return err
	}
	for _, side := range []struct {
		name string
		t    *tree.Tree[Limit]
	}{{"buy", b.Buy}, {"sell", b.Sell}} {
		if _, err := fmt.Fprintf(w, "%s (%d levels)\n", side.name, side.t.Len()); err != nil {
			return err
		}
		for n := range side.t.All() {
			_, err := fmt.Fprintf(w, "  #%d %s orders=%d left=%s right=%s parent=%s\n",
				n.Index, n.Value.Price, len(n.Value.Orders), link(n.Left), link(n.Right), link(n.Parent))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Book) String() string {
	var sb strings.Builder
	_ = b.Dump(&sb)
	return sb.String()
}

func link(i tree.Index) string {
	if !i.Valid() {
		return "-"
	}
	return fmt.Sprint(int(i))
}
