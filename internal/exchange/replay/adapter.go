// Package replay serves snapshots from the local archive instead of a venue,
// and records live snapshots into it.
package replay

import (
	"context"
	"errors"
	"time"

	"limitbook/internal/exchange/common"
	"limitbook/internal/infra/log"
	"limitbook/internal/infra/metrics"
)

type Reader interface {
	Latest(product string) (common.Snapshot, time.Time, error)
}

type Writer interface {
	Put(product string, at time.Time, snap common.Snapshot) error
}

// Adapter replays the latest archived snapshot of each product.
type Adapter struct{ store Reader }

func New(store Reader) *Adapter { return &Adapter{store: store} }

func (a *Adapter) Name() string { return "replay" }

func (a *Adapter) GetSnapshot(ctx context.Context, product string) (common.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return common.Snapshot{}, err
	}
	snap, _, err := a.store.Latest(product)
	if err != nil {
		return common.Snapshot{}, &common.FetchError{Kind: kindOf(err), Product: product, Err: err}
	}
	return snap, nil
}

func kindOf(err error) common.Kind {
	switch {
	case errors.Is(err, common.ErrEmptySnapshot):
		return common.KindEmpty
	case errors.Is(err, common.ErrCorruptSnapshot):
		return common.KindDecode
	}
	return common.KindStorage
}

// Recorder archives every snapshot its inner provider returns. Archive
// failures are logged and do not fail the fetch.
type Recorder struct {
	inner  common.SnapshotProvider
	store  Writer
	logger log.Logger
	now    func() time.Time
}

func NewRecorder(inner common.SnapshotProvider, store Writer, logger log.Logger) *Recorder {
	return &Recorder{inner: inner, store: store, logger: log.Component(logger, "recorder"), now: time.Now}
}

func (r *Recorder) Name() string { return r.inner.Name() }

func (r *Recorder) GetSnapshot(ctx context.Context, product string) (common.Snapshot, error) {
	snap, err := r.inner.GetSnapshot(ctx, product)
	if err != nil {
		return snap, err
	}
	if err := r.store.Put(product, r.now(), snap); err != nil {
		metrics.ArchiveWritesTotal.WithLabelValues("error").Inc()
		r.logger.Error().Err(err).Str("product", product).Msg("archive snapshot failed")
	} else {
		metrics.ArchiveWritesTotal.WithLabelValues("ok").Inc()
	}
	return snap, nil
}
