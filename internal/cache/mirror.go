package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"crypto-live/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	SnapshotKey     = "crypto:snapshot"
	SnapshotChannel = "crypto:snapshot:updates"
)

type snapshotWriter interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// SnapshotMirror copies each published snapshot document to one redis key and
// announces the new update_count on a channel. The key is overwritten every
// cycle and expires if the producer stops.
type SnapshotMirror struct {
	tracer trace.Tracer
	client snapshotWriter
	ttl    time.Duration
}

func NewSnapshotMirror(tracer trace.Tracer, client *redis.Client, ttl time.Duration) *SnapshotMirror {
	return &SnapshotMirror{tracer: tracer, client: client, ttl: ttl}
}

func (m *SnapshotMirror) Name() string { return "redis" }

func (m *SnapshotMirror) Publish(ctx context.Context, snap *domain.Snapshot) error {
	ctx, span := m.tracer.Start(ctx, "cache.mirror-snapshot")
	defer span.End()

	doc := snap.Document()
	span.SetAttributes(attribute.Int64("update_count", int64(doc.UpdateCount)))

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := m.client.Set(ctx, SnapshotKey, payload, m.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: redis set %s: %w", domain.ErrSinkWrite, SnapshotKey, err)
	}
	if err := m.client.Publish(ctx, SnapshotChannel, strconv.FormatUint(doc.UpdateCount, 10)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: redis publish %s: %w", domain.ErrSinkWrite, SnapshotChannel, err)
	}
	return nil
}
