package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/danielpatrickdp/txpredict/internal/outcome"
	"github.com/danielpatrickdp/txpredict/internal/session"
)

// #region ingester
// Ingester is the session surface the poller drives.
type Ingester interface {
	LoadInitial(records []outcome.Record) error
	PushRecord(r outcome.Record) (session.PushResult, error)
}

// #endregion ingester

// #region fetch
// Fetcher downloads upstream batches.
type Fetcher struct {
	config Config
	client *http.Client
}

// NewFetcher creates a fetcher. client may be nil.
func NewFetcher(config Config, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{config: config, client: client}
}

// Fetch GETs the upstream URL, retrying failed attempts after RetryDelay.
// Each attempt is bounded by Timeout. The last error is returned.
func (f *Fetcher) Fetch(ctx context.Context) ([]Payload, error) {
	attempts := max(f.config.Retries, 1)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.config.RetryDelay):
			}
		}
		payloads, err := f.fetchOnce(ctx)
		if err == nil {
			return payloads, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("fetch %s after %d attempts: %w", f.config.URL, attempts, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context) ([]Payload, error) {
	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return Decode(resp.Body)
}

// #endregion fetch

// #region poller
// Poller feeds a session from the upstream: the first non-empty batch
// seeds it, later batches push only sessions newer than the last seen.
type Poller struct {
	fetcher *Fetcher
	target  Ingester
	config  Config

	mu      sync.Mutex
	last    int64
	started bool
}

// NewPoller creates a poller over target.
func NewPoller(config Config, fetcher *Fetcher, target Ingester) *Poller {
	return &Poller{fetcher: fetcher, target: target, config: config}
}

// LastSession returns the newest session ingested so far.
func (p *Poller) LastSession() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Poll runs one fetch-and-ingest cycle and reports how many records were
// ingested.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	payloads, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	batch := Normalize(payloads)
	if len(batch) == 0 {
		return 0, ErrEmptyBatch
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		if err := p.target.LoadInitial(batch); err != nil {
			return 0, fmt.Errorf("load initial: %w", err)
		}
		p.started = true
		p.last = batch[len(batch)-1].Session
		return len(batch), nil
	}

	n := 0
	for _, r := range After(batch, p.last) {
		if _, err := p.target.PushRecord(r); err != nil {
			return n, fmt.Errorf("push %d: %w", r.Session, err)
		}
		p.last = r.Session
		n++
	}
	return n, nil
}

// Run polls immediately and then every Interval until ctx is done.
// Poll errors are logged and the loop continues; a closed session stops it.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.config.Interval
	if interval <= 0 {
		interval = DefaultConfig().Interval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := p.Poll(ctx)
		switch {
		case errors.Is(err, session.ErrClosed):
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrEmptyBatch):
		case err != nil:
			log.Printf("[FEED] poll: %v", err)
		case n > 0:
			log.Printf("[FEED] ingested %d records, last=%d", n, p.LastSession())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// #endregion poller
