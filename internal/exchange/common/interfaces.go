package common

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxLevelOrders bounds the order count accepted for a single price level.
const MaxLevelOrders = 100_000

// AggregatedOrder summarises every resting order at one price level: the
// level's total size and how many orders make it up.
type AggregatedOrder struct {
	Price     string `json:"price"`
	Size      string `json:"size"`
	NumOrders int    `json:"num_orders"`
}

// UnmarshalJSON accepts both the object form {"price","size","num_orders"} and
// the positional form ["price","size",num_orders] used by level-2 book
// endpoints. Prices and sizes must parse as decimals.
func (a *AggregatedOrder) UnmarshalJSON(b []byte) error {
	var row []json.RawMessage
	if err := json.Unmarshal(b, &row); err == nil {
		if len(row) < 3 {
			return fmt.Errorf("aggregated order: want 3 fields, got %d", len(row))
		}
		var out AggregatedOrder
		if err := json.Unmarshal(row[0], &out.Price); err != nil {
			return fmt.Errorf("aggregated order price: %w", err)
		}
		if err := json.Unmarshal(row[1], &out.Size); err != nil {
			return fmt.Errorf("aggregated order size: %w", err)
		}
		if err := json.Unmarshal(row[2], &out.NumOrders); err != nil {
			return fmt.Errorf("aggregated order num_orders: %w", err)
		}
		*a = out
		return a.validate()
	}

	type plain AggregatedOrder
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*a = AggregatedOrder(out)
	return a.validate()
}

func (a AggregatedOrder) validate() error {
	if _, err := decimal.NewFromString(a.Price); err != nil {
		return fmt.Errorf("aggregated order: bad price %q: %w", a.Price, err)
	}
	if _, err := decimal.NewFromString(a.Size); err != nil {
		return fmt.Errorf("aggregated order: bad size %q: %w", a.Size, err)
	}
	if a.NumOrders < 0 || a.NumOrders > MaxLevelOrders {
		return fmt.Errorf("aggregated order: num_orders %d out of range [0, %d]", a.NumOrders, MaxLevelOrders)
	}
	return nil
}

// Snapshot is a decoded depth-2 book: bids best first, asks best first, as the
// venue sends them.
type Snapshot struct {
	Bids []AggregatedOrder `json:"bids"`
	Asks []AggregatedOrder `json:"asks"`
}

// SnapshotProvider fetches and decodes a level-2 snapshot for one product.
// Implementations return a *FetchError for network, status and decode
// failures.
type SnapshotProvider interface {
	Name() string
	GetSnapshot(ctx context.Context, product string) (Snapshot, error)
}
