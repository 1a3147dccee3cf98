package job

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crypto-live/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func TestNewMarketPollerInterval(t *testing.T) {
	poller := NewMarketPoller(testTracer, &stubCollector{}, 2)
	if poller.pollInterval != 2*time.Second {
		t.Fatalf("expected 2s interval, got %v", poller.pollInterval)
	}
	poller = NewMarketPoller(testTracer, &stubCollector{}, 0)
	if poller.pollInterval != 30*time.Second {
		t.Fatalf("expected default 30s interval, got %v", poller.pollInterval)
	}
}

func TestRunOncePublishesToEverySink(t *testing.T) {
	collector := &stubCollector{assets: []domain.Asset{{Symbol: "BTC", PriceUSD: 1}}}
	first, second := &recordingPublisher{name: "a"}, &recordingPublisher{name: "b"}
	poller := NewMarketPoller(testTracer, collector, 1, first, second)

	if err := poller.runOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.snapshots()) != 1 || len(second.snapshots()) != 1 {
		t.Fatalf("expected one publish per sink, got %d and %d", len(first.snapshots()), len(second.snapshots()))
	}
	if first.snapshots()[0] != second.snapshots()[0] {
		t.Fatal("sinks should receive the same snapshot")
	}
}

func TestConsecutiveCyclesIncrementSequenceAndTimestamp(t *testing.T) {
	collector := &stubCollector{assets: []domain.Asset{{Symbol: "BTC"}}}
	pub := &recordingPublisher{name: "http"}
	poller := NewMarketPoller(testTracer, collector, 1, pub)

	fixed := time.Date(2025, 1, 1, 9, 30, 0, 250_000_000, time.Local)
	poller.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		if err := poller.runOnce(context.Background()); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}

	snaps := pub.snapshots()
	for i := 1; i < len(snaps); i++ {
		prev, cur := snaps[i-1].Document(), snaps[i].Document()
		if cur.UpdateCount != prev.UpdateCount+1 {
			t.Fatalf("update_count went %d -> %d", prev.UpdateCount, cur.UpdateCount)
		}
		if cur.Timestamp <= prev.Timestamp {
			t.Fatalf("timestamp not strictly later: %s -> %s", prev.Timestamp, cur.Timestamp)
		}
	}
	if snaps[0].Sequence != 1 {
		t.Fatalf("first sequence should be 1, got %d", snaps[0].Sequence)
	}
}

func TestRunOnceFetchFailureSkipsPublish(t *testing.T) {
	collector := &stubCollector{err: domain.ErrNetwork}
	pub := &recordingPublisher{name: "http"}
	poller := NewMarketPoller(testTracer, collector, 1, pub)

	if err := poller.runOnce(context.Background()); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if len(pub.snapshots()) != 0 {
		t.Fatal("failed cycle must not publish")
	}
	if poller.sequence != 0 {
		t.Fatalf("failed cycle must not advance sequence, got %d", poller.sequence)
	}
}

func TestRunOnceEmptyDatasetSkipsPublish(t *testing.T) {
	pub := &recordingPublisher{name: "xlsx"}
	poller := NewMarketPoller(testTracer, &stubCollector{}, 1, pub)

	if err := poller.runOnce(context.Background()); !errors.Is(err, domain.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
	if len(pub.snapshots()) != 0 {
		t.Fatal("empty cycle must not publish")
	}
}

func TestRunOnceSinkFailureDoesNotBlockOtherSinks(t *testing.T) {
	collector := &stubCollector{assets: []domain.Asset{{Symbol: "BTC"}}}
	failing := &recordingPublisher{name: "xlsx", err: domain.ErrSinkWrite}
	healthy := &recordingPublisher{name: "http"}
	poller := NewMarketPoller(testTracer, collector, 1, failing, healthy)

	err := poller.runOnce(context.Background())
	if !errors.Is(err, domain.ErrSinkWrite) {
		t.Fatalf("expected ErrSinkWrite, got %v", err)
	}
	if len(healthy.snapshots()) != 1 {
		t.Fatal("healthy sink should still receive the snapshot")
	}
}

func TestRunOnceRecoversPanic(t *testing.T) {
	poller := NewMarketPoller(testTracer, &stubCollector{panicMsg: "boom"}, 1)
	if err := poller.runOnce(context.Background()); err == nil {
		t.Fatal("expected panic to surface as an error")
	}
}

func TestMarketPollerRetriesAfterFailure(t *testing.T) {
	collector := &stubCollector{err: domain.ErrAPI}
	poller := NewMarketPoller(testTracer, collector, 1)
	poller.pollInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Start(ctx)

	eventually(t, func() bool { return collector.callCount() >= 3 })
}

func TestMarketPollerStopsOnCancel(t *testing.T) {
	collector := &stubCollector{assets: []domain.Asset{{Symbol: "BTC"}}}
	poller := NewMarketPoller(testTracer, collector, 3600)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return poller.State() == StateRunning && collector.callCount() > 0 })
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop promptly on cancel")
	}
	if poller.State() != StateStopped {
		t.Fatalf("expected stopped state, got %s", poller.State())
	}
}

func TestMarketPollerStartTwiceIsNoop(t *testing.T) {
	poller := NewMarketPoller(testTracer, &stubCollector{}, 3600)
	poller.state.Store(int32(StateRunning))

	done := make(chan struct{})
	go func() {
		poller.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Start should return immediately")
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

type stubCollector struct {
	assets   []domain.Asset
	err      error
	panicMsg string
	calls    atomic.Int32
}

func (s *stubCollector) Collect(ctx context.Context) ([]domain.Asset, error) {
	s.calls.Add(1)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.assets, nil
}

func (s *stubCollector) callCount() int { return int(s.calls.Load()) }

type recordingPublisher struct {
	name string
	err  error

	mu   sync.Mutex
	seen []*domain.Snapshot
}

func (r *recordingPublisher) Name() string { return r.name }

func (r *recordingPublisher) Publish(ctx context.Context, snap *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.seen = append(r.seen, snap)
	return nil
}

func (r *recordingPublisher) snapshots() []*domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Snapshot(nil), r.seen...)
}
