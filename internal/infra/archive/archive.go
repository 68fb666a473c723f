// Package archive keeps decoded snapshots in a pebble store so a book can be
// rebuilt later without reaching the venue.
//
// Keys are <len(product), 2 bytes big-endian><product><unix nanos, 8 bytes
// big-endian>, so one product's snapshots sort by capture time and no
// product's key range overlaps another's.
package archive

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"limitbook/internal/exchange/common"

	"github.com/cockroachdb/pebble"
)

type Archive struct {
	db *pebble.DB
}

func Open(dir string) (*Archive, error) {
	return open(dir, &pebble.Options{})
}

func open(dir string, opts *pebble.Options) (*Archive, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", dir, err)
	}
	return &Archive{db: db}, nil
}

var ErrProductName = errors.New("archive: product name too long")

func (a *Archive) Put(product string, at time.Time, snap common.Snapshot) error {
	k, err := key(product, at)
	if err != nil {
		return err
	}
	val, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", product, err)
	}
	return a.db.Set(k, val, pebble.Sync)
}

// Latest returns the most recently captured snapshot for product, or
// common.ErrEmptySnapshot.
func (a *Archive) Latest(product string) (common.Snapshot, time.Time, error) {
	lo, hi, err := bounds(product)
	if err != nil {
		return common.Snapshot{}, time.Time{}, err
	}
	it, err := a.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return common.Snapshot{}, time.Time{}, err
	}
	defer func() { _ = it.Close() }()

	if !it.Last() {
		if err := it.Error(); err != nil {
			return common.Snapshot{}, time.Time{}, err
		}
		return common.Snapshot{}, time.Time{}, fmt.Errorf("%s: %w", product, common.ErrEmptySnapshot)
	}
	k := it.Key()
	at := time.Unix(0, int64(binary.BigEndian.Uint64(k[len(k)-tsLen:])))

	var snap common.Snapshot
	if err := json.Unmarshal(it.Value(), &snap); err != nil {
		return common.Snapshot{}, time.Time{}, fmt.Errorf("decode archived snapshot %s: %w: %w", product, common.ErrCorruptSnapshot, err)
	}
	return snap, at, nil
}

func (a *Archive) Close() error { return a.db.Close() }

func prefix(product string) ([]byte, error) {
	if len(product) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes", ErrProductName, len(product))
	}
	p := make([]byte, 0, 2+len(product)+tsLen+1)
	p = binary.BigEndian.AppendUint16(p, uint16(len(product)))
	return append(p, product...), nil
}

const tsLen = 8

func key(product string, at time.Time) ([]byte, error) {
	p, err := prefix(product)
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint64(p, uint64(at.UnixNano())), nil
}

// bounds spans every key of product: the prefix followed by any timestamp.
func bounds(product string) (lo, hi []byte, err error) {
	lo, err = prefix(product)
	if err != nil {
		return nil, nil, err
	}
	hi = append(slices.Clone(lo), bytes.Repeat([]byte{0xff}, tsLen+1)...)
	return lo, hi, nil
}
