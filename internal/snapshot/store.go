package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync/atomic"

	"crypto-live/internal/domain"
)

// Store is the process-wide slot holding the current snapshot. The poller is the
// only writer; handlers, the bot and the TUI read from it concurrently.
type Store struct {
	current atomic.Pointer[entry]
}

// entry pairs a snapshot with its encoded document so a reader gets both from one load.
type entry struct {
	snap *domain.Snapshot
	body []byte
}

var emptyBody = mustEncode(domain.EmptyDocument())

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Name() string { return "http" }

// Publish replaces the current snapshot wholesale.
func (s *Store) Publish(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("publish nil snapshot")
	}
	own := &domain.Snapshot{
		Records:   slices.Clone(snap.Records),
		Timestamp: snap.Timestamp,
		Sequence:  snap.Sequence,
	}
	body, err := json.Marshal(own.Document())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.current.Store(&entry{snap: own, body: body})
	return nil
}

// Current returns the latest snapshot, or nil before the first publish.
// Callers must not modify it.
func (s *Store) Current() *domain.Snapshot {
	if e := s.current.Load(); e != nil {
		return e.snap
	}
	return nil
}

// Document returns the wire form of the current snapshot.
func (s *Store) Document() domain.SnapshotDocument {
	return s.Current().Document()
}

// Body returns the encoded wire document. The slice is shared; do not modify it.
func (s *Store) Body() []byte {
	if e := s.current.Load(); e != nil {
		return e.body
	}
	return emptyBody
}

func mustEncode(doc domain.SnapshotDocument) []byte {
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return b
}
