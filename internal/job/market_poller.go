package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"crypto-live/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// State is the poller lifecycle. The only transition out of StateRunning is
// cancellation of the context passed to Start.
type State int32

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

type MarketCollector interface {
	Collect(ctx context.Context) ([]domain.Asset, error)
}

// Publisher delivers a snapshot to one sink.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, snap *domain.Snapshot) error
}

// MarketPoller drives fetch, normalize and publish on a fixed interval.
// A failed cycle is logged and retried after the same interval; nothing but
// cancellation ends the loop.
type MarketPoller struct {
	tracer       trace.Tracer
	collector    MarketCollector
	publishers   []Publisher
	pollInterval time.Duration
	now          func() time.Time

	state    atomic.Int32
	sequence uint64
	lastAt   time.Time
}

func NewMarketPoller(tracer trace.Tracer, collector MarketCollector, pollIntervalSecs int, publishers ...Publisher) *MarketPoller {
	if pollIntervalSecs <= 0 {
		pollIntervalSecs = 30
	}
	return &MarketPoller{
		tracer:       tracer,
		collector:    collector,
		publishers:   publishers,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
		now:          time.Now,
	}
}

func (p *MarketPoller) State() State {
	return State(p.state.Load())
}

// Start runs a cycle immediately and then once per interval. Blocks until ctx is cancelled.
func (p *MarketPoller) Start(ctx context.Context) {
	if !p.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		log.Println("Market poller already running")
		return
	}
	defer p.state.Store(int32(StateStopped))

	log.Printf("Market poller starting (interval %s, sinks %d)", p.pollInterval, len(p.publishers))

	for {
		if err := p.runOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Market poller cycle error: %v", err)
		}

		timer := time.NewTimer(p.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Market poller stopped")
			return
		case <-timer.C:
		}
	}
}

func (p *MarketPoller) runOnce(ctx context.Context) (err error) {
	ctx, span := p.tracer.Start(ctx, "market-poller.run-once")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
		if err != nil {
			span.RecordError(err)
		}
	}()

	assets, err := p.collector.Collect(ctx)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return domain.ErrEmptyDataset
	}

	snap := p.nextSnapshot(assets)
	span.SetAttributes(
		attribute.Int64("sequence", int64(snap.Sequence)),
		attribute.Int("assets", len(snap.Records)),
	)

	var errs []error
	for _, pub := range p.publishers {
		if perr := pub.Publish(ctx, snap); perr != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", pub.Name(), perr))
		}
	}

	log.Printf("Update #%d completed at %s (%d assets)", snap.Sequence, snap.Timestamp.Format(domain.TimestampLayout), len(snap.Records))
	return errors.Join(errs...)
}

// nextSnapshot stamps a new snapshot. Timestamps are published at second
// resolution, so each one is forced at least a second past the previous.
func (p *MarketPoller) nextSnapshot(assets []domain.Asset) *domain.Snapshot {
	at := p.now()
	if !p.lastAt.IsZero() {
		floor := p.lastAt.Truncate(time.Second).Add(time.Second)
		if at.Before(floor) {
			at = floor
		}
	}
	p.lastAt = at
	p.sequence++

	return &domain.Snapshot{
		Records:   assets,
		Timestamp: at,
		Sequence:  p.sequence,
	}
}
