package orderbook

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Order is a single resting order. Price and size stay as the venue's decimal
// text.
type Order struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// Limit is a price level and the orders resting at it. Limits are ordered and
// compared by price only.
//
// A level loaded from a snapshot keeps the venue's aggregate in Quoted and
// QuotedSize: its first Quoted orders are placeholders whose sizes are not
// real per-order sizes.
type Limit struct {
	Price      string  `json:"price"`
	Orders     []Order `json:"orders"`
	Quoted     int     `json:"quoted,omitempty"`
	QuotedSize string  `json:"quoted_size,omitempty"`
}

// Size is the level's total size: the quoted aggregate plus the sizes of
// orders added after loading. Unparseable sizes count as zero.
func (l Limit) Size() decimal.Decimal {
	total := decimal.Zero
	if d, err := decimal.NewFromString(l.QuotedSize); err == nil {
		total = d
	}
	for _, o := range l.Orders[min(max(l.Quoted, 0), len(l.Orders)):] {
		if d, err := decimal.NewFromString(o.Size); err == nil {
			total = total.Add(d)
		}
	}
	return total
}

// ComparePrices orders price text numerically, so "9" < "10" and "100" ==
// "100.00". Text that is not a decimal sorts after every decimal, byte-wise
// among itself; this keeps the order total for inputs that skipped
// validation.
func ComparePrices(a, b string) int {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	switch {
	case errA == nil && errB == nil:
		return da.Cmp(db)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func compareLimits(a, b Limit) int { return ComparePrices(a.Price, b.Price) }
