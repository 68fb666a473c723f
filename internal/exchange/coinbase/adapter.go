package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"limitbook/internal/config"
	"limitbook/internal/exchange/common"
	"limitbook/internal/infra/log"
	"limitbook/internal/infra/metrics"
	"limitbook/internal/infra/network"
)

type Adapter struct {
	cfg     config.Config
	http    *http.Client
	limiter *network.TokenBucket
	logger  log.Logger
}

func New(cfg config.Config, logger log.Logger) *Adapter {
	return &Adapter{
		cfg:     cfg,
		http:    network.NewHTTPClient(time.Duration(cfg.Source.TimeoutSeconds) * time.Second),
		limiter: network.NewTokenBucket(cfg.Source.Burst, cfg.Source.RatePerSec),
		logger:  log.Component(logger, "coinbase"),
	}
}

func (a *Adapter) Name() string { return "coinbase" }

// GetSnapshot fetches the aggregated book for product. Network failures, 429
// and 5xx responses are retried up to Source.Retries times with doubling
// backoff; other status codes and malformed bodies fail immediately.
func (a *Adapter) GetSnapshot(ctx context.Context, product string) (common.Snapshot, error) {
	backoff := time.Duration(a.cfg.Source.RetryBackoffMs) * time.Millisecond
	for attempt := 0; ; attempt++ {
		snap, err := a.fetch(ctx, product)
		if err == nil {
			return snap, nil
		}
		var fe *common.FetchError
		if errors.As(err, &fe) {
			metrics.APIErrorsTotal.WithLabelValues(a.Name(), string(fe.Kind)).Inc()
		}
		if fe == nil || !fe.Temporary() || attempt >= a.cfg.Source.Retries || ctx.Err() != nil {
			return common.Snapshot{}, err
		}
		metrics.SnapshotRetriesTotal.WithLabelValues(a.Name()).Inc()
		a.logger.Warn().Err(err).Str("product", product).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("snapshot fetch failed, retrying")
		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return common.Snapshot{}, &common.FetchError{Kind: common.KindNetwork, Product: product, Err: ctx.Err()}
		case <-t.C:
		}
		backoff *= 2
	}
}

func (a *Adapter) fetch(ctx context.Context, product string) (common.Snapshot, error) {
	fail := func(kind common.Kind, status int, err error) (common.Snapshot, error) {
		return common.Snapshot{}, &common.FetchError{Kind: kind, Product: product, Status: status, Err: err}
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return fail(common.KindNetwork, 0, err)
	}

	u := fmt.Sprintf("%s/products/%s/book?level=%d",
		strings.TrimRight(a.cfg.Source.BaseURL, "/"), url.PathEscape(product), a.cfg.Source.Level)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fail(common.KindNetwork, 0, err)
	}
	req.Header.Set("User-Agent", a.cfg.Source.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return fail(common.KindNetwork, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fail(common.KindStatus, resp.StatusCode, errors.New(msg))
	}

	var snap common.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fail(common.KindDecode, 0, err)
	}
	return snap, nil
}
