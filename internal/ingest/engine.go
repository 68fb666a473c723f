// Package ingest keeps a Book per configured product, rebuilding each one from
// a fresh snapshot on a fixed interval.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"limitbook/internal/config"
	"limitbook/internal/exchange/common"
	"limitbook/internal/infra/log"
	"limitbook/internal/infra/metrics"
	"limitbook/internal/orderbook"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentFetches = 4

type BookSink interface {
	Put(b *orderbook.Book)
}

// Publisher ships book summaries downstream, keyed by product.
type Publisher interface {
	Send(ctx context.Context, key, value []byte) error
}

type Engine struct {
	cfg      config.Config
	provider common.SnapshotProvider
	sink     BookSink
	pub      Publisher
	logger   log.Logger
}

// New wires an engine. pub may be nil to disable publication.
func New(cfg config.Config, provider common.SnapshotProvider, sink BookSink, pub Publisher, logger log.Logger) *Engine {
	return &Engine{cfg: cfg, provider: provider, sink: sink, pub: pub, logger: log.Component(logger, "ingest")}
}

// Run loads every product once and fails if any initial load fails. With a
// positive refresh interval it then rebuilds all books on each tick, keeping
// the previous book of a product whose refresh fails. Run returns when ctx is
// done.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.RefreshAll(ctx); err != nil {
		return err
	}
	e.logger.Info().Strs("products", e.cfg.Source.Products).Str("source", e.provider.Name()).Msg("initial books loaded")

	interval := time.Duration(e.cfg.Refresh.IntervalSeconds) * time.Second
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := e.RefreshAll(ctx); err != nil && ctx.Err() == nil {
				e.logger.Warn().Err(err).Msg("refresh incomplete, serving previous books")
			}
		}
	}
}

// RefreshAll rebuilds every configured product concurrently and returns the
// first error. Products that succeed are stored regardless.
func (e *Engine) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for _, p := range e.cfg.Source.Products {
		g.Go(func() error { return e.Refresh(ctx, p) })
	}
	return g.Wait()
}

// Refresh fetches one product, stores the new book and publishes its summary.
func (e *Engine) Refresh(ctx context.Context, product string) error {
	start := time.Now()
	book, err := orderbook.Get(ctx, e.provider, product)
	metrics.SnapshotFetchLatencyMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.SnapshotFetchTotal.WithLabelValues(product, "error").Inc()
		e.logger.Error().Err(err).Str("product", product).Str("kind", string(common.KindOf(err))).Msg("snapshot load failed")
		return err
	}
	metrics.SnapshotFetchTotal.WithLabelValues(product, "ok").Inc()
	metrics.BookRebuildsTotal.WithLabelValues(product).Inc()

	s := book.Summary()
	metrics.BookLevels.WithLabelValues(product, string(orderbook.Buy)).Set(float64(s.Bids.Levels))
	metrics.BookLevels.WithLabelValues(product, string(orderbook.Sell)).Set(float64(s.Asks.Levels))
	metrics.BookOrders.WithLabelValues(product, string(orderbook.Buy)).Set(float64(s.Bids.Orders))
	metrics.BookOrders.WithLabelValues(product, string(orderbook.Sell)).Set(float64(s.Asks.Orders))

	e.sink.Put(book)
	e.logger.Debug().Str("product", product).Int("bid_levels", s.Bids.Levels).Int("ask_levels", s.Asks.Levels).
		Str("best_bid", s.BestBid).Str("best_ask", s.BestAsk).Dur("took", time.Since(start)).Msg("book rebuilt")

	e.publish(ctx, s)
	return nil
}

func (e *Engine) publish(ctx context.Context, s orderbook.Summary) {
	if e.pub == nil {
		return
	}
	val, err := json.Marshal(s)
	if err == nil {
		err = e.pub.Send(ctx, []byte(s.Product), val)
	}
	if err != nil {
		metrics.BookPublishTotal.WithLabelValues("error").Inc()
		e.logger.Error().Err(err).Str("product", s.Product).Msg("publish summary failed")
		return
	}
	metrics.BookPublishTotal.WithLabelValues("ok").Inc()
}
