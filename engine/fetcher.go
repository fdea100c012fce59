package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ansel1/tangview/parser"
	"github.com/ansel1/tangview/results"
	"github.com/pkg/errors"
)

// Metricer records fetch outcomes.
type Metricer interface {
	RecordFetch(success bool, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordFetch(bool, time.Duration) {}

// Fetcher loads result scripts one callback registration at a time.
//
// Every Fetch waits for the previous one queued on the callback slot to
// settle, successfully or not, before it registers the callback and
// dispatches its own request. A failed predecessor never fails its successor.
type Fetcher struct {
	dispatcher Dispatcher
	slot       *CallbackSlot
	logger     *slog.Logger
	metrics    Metricer
}

// Option configures the fetcher
type Option func(*Fetcher)

// WithDispatcher sets the transport used to run result scripts.
func WithDispatcher(d Dispatcher) Option {
	return func(f *Fetcher) {
		f.dispatcher = d
	}
}

// WithCallbackSlot shares a callback slot, and its fetch queue, with other
// fetchers.
func WithCallbackSlot(s *CallbackSlot) Option {
	return func(f *Fetcher) {
		f.slot = s
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m Metricer) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher creates a new fetcher. By default it loads http(s) URLs over
// HTTP and everything else from disk.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{}
	for _, opt := range opts {
		opt(f)
	}
	if f.dispatcher == nil {
		f.dispatcher = NewAutoDispatcher(nil, parser.DefaultCallback)
	}
	if f.slot == nil {
		f.slot = NewCallbackSlot()
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.metrics == nil {
		f.metrics = noopMetrics{}
	}
	return f
}

// Fetch runs the result script at url and returns the payload it pushed.
//
// If ctx is cancelled while waiting for an earlier fetch, Fetch returns
// ctx.Err() without dispatching; later fetches still wait for the earlier one.
func (f *Fetcher) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	c, prev := f.slot.enqueue(url)

	if prev != nil {
		select {
		case <-prev.done:
		case <-ctx.Done():
			go func() {
				<-prev.done
				f.slot.settle(c)
			}()
			return nil, ctx.Err()
		}
	}
	defer f.slot.settle(c)

	release, err := f.slot.Acquire(url)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	payload, err := f.dispatcher.Send(ctx, url)
	release()

	elapsed := time.Since(start)
	f.metrics.RecordFetch(err == nil, elapsed)
	if err != nil {
		f.logger.Debug("jsonp fetch failed", "url", url, "error", err)
		return nil, errors.Wrapf(err, "'%s' jsonp fetch failed", url)
	}

	f.logger.Debug("jsonp fetch done", "url", url, "elapsed", elapsed, "bytes", len(payload))
	return payload, nil
}

// FetchReport fetches url and decodes the payload as a report.
func (f *Fetcher) FetchReport(ctx context.Context, url string) (*results.Report, error) {
	payload, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return parser.ParseReport(payload)
}

// InFlight reports whether any fetch queued on the fetcher's slot has not
// settled yet.
func (f *Fetcher) InFlight() bool {
	return f.slot.Pending()
}

// Slot returns the callback slot the fetcher registers with.
func (f *Fetcher) Slot() *CallbackSlot {
	return f.slot
}

// LoadInto fetches the report at url and pushes it into collector. A failure
// is recorded on the collector and returned.
func (f *Fetcher) LoadInto(ctx context.Context, collector *results.Collector, url string) error {
	report, err := f.FetchReport(ctx, url)
	if err != nil {
		collector.Fail(url, err)
		return err
	}
	collector.Push(url, report)
	return nil
}
