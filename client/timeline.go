package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mycelian/mycelian-journal/internal/api"
	"github.com/mycelian/mycelian-journal/internal/job"
	"github.com/mycelian/mycelian-journal/internal/mapper"
	"github.com/mycelian/mycelian-journal/internal/types"
)

// Timeline is the local, newest-first list of a user's entries. All mutation
// goes through Refresh, AddEntry, RemoveEntry and ClearEntries; callers only
// ever see copies via Entries.
//
// Writes are serialised per Timeline: concurrent AddEntry/RemoveEntry calls
// persist one at a time in the order they finished resolving media, so the
// list order always matches the order the backend accepted them. Media uploads
// of concurrent saves still overlap.
type Timeline struct {
	c     *Client
	key   string // write queue key
	shard string // metric label
	log   zerolog.Logger

	mu      sync.RWMutex
	entries []types.Entry

	// gen increases on every Refresh and ClearEntries. A refresh applies its
	// result only if gen still holds the value it started with.
	gen     atomic.Uint64
	loading atomic.Int32
	saving  atomic.Int32
}

// NewTimeline returns an empty Timeline backed by c.
func (c *Client) NewTimeline() *Timeline {
	n := atomic.AddUint32(&c.timelines, 1)
	key := fmt.Sprintf("timeline-%d", n)
	return &Timeline{
		c:     c,
		key:   key,
		shard: job.ShardLabel(key),
		log:   c.log.With().Str("timeline", key).Logger(),
	}
}

// Entries returns a deep copy of the current list, newest first.
func (t *Timeline) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries currently held.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Loading reports whether a Refresh is in flight.
func (t *Timeline) Loading() bool { return t.loading.Load() > 0 }

// Saving reports whether an AddEntry or RemoveEntry is in flight. UIs use it to
// disable a second save button; the store itself does not depend on it.
func (t *Timeline) Saving() bool { return t.saving.Load() > 0 }

// Refresh replaces the list with the first page from the backend and returns a
// copy of it. If a newer Refresh or ClearEntries started while this one was
// waiting on the network, the response is discarded and ErrRefreshSuperseded
// is returned.
func (t *Timeline) Refresh(ctx context.Context) ([]Entry, error) {
	g := t.gen.Add(1)
	t.loading.Add(1)
	defer t.loading.Add(-1)

	rs, err := api.ListEntries(ctx, t.c.rest, types.ListEntriesParams{Limit: t.c.pageSize})
	if err != nil {
		refreshesTotal.WithLabelValues("failed").Inc()
		t.log.Error().Err(err).Msg("refresh failed")
		return nil, err
	}
	fresh := mapper.FromWireResponses(rs)

	t.mu.Lock()
	if t.gen.Load() != g {
		t.mu.Unlock()
		refreshesTotal.WithLabelValues("superseded").Inc()
		t.log.Debug().Uint64("generation", g).Msg("discarding stale refresh")
		return nil, ErrRefreshSuperseded
	}
	t.entries = fresh
	t.mu.Unlock()

	refreshesTotal.WithLabelValues("applied").Inc()
	out := make([]Entry, len(fresh))
	for i, e := range fresh {
		out[i] = e.Clone()
	}
	return out, nil
}

// AddEntry saves d and prepends the confirmed entry.
//
// Local media are uploaded first, in parallel; a reference whose upload fails
// keeps its local URI. The entry is then created on the backend. Nothing is
// inserted until the backend confirms, so on error the list is unchanged.
func (t *Timeline) AddEntry(ctx context.Context, d Draft) (*Entry, error) {
	if err := types.ValidateDraft(d); err != nil {
		return nil, err
	}
	if t.c.closed() {
		return nil, ErrClosed
	}
	t.saving.Add(1)
	defer t.saving.Add(-1)

	resolved := t.c.resolver.ResolveDraft(ctx, d)
	payload := mapper.ToWireDraft(resolved)

	var created Entry
	err := t.c.exec.Do(ctx, t.key, func(ctx context.Context) error {
		er, err := api.CreateEntry(ctx, t.c.rest, payload)
		if err != nil {
			return err
		}
		created = mapper.FromWireResponse(*er)

		t.mu.Lock()
		t.entries = append([]types.Entry{created.Clone()}, t.entries...)
		t.mu.Unlock()
		return nil
	})
	if err != nil {
		err = mapQueueError(err)
		entryWriteFailuresTotal.WithLabelValues(t.shard, "create").Inc()
		t.log.Error().Err(err).Str("type", string(d.Type)).Msg("save entry failed")
		return nil, err
	}
	entryWritesTotal.WithLabelValues(t.shard, "create").Inc()
	t.log.Debug().Str("entry_id", created.ID).Str("type", string(created.Type)).Msg("entry saved")
	return &created, nil
}

// RemoveEntry deletes the entry on the backend, then drops it from the list
// without reordering the rest. On error the list is unchanged.
func (t *Timeline) RemoveEntry(ctx context.Context, id string) error {
	if err := types.ValidateEntryID(id); err != nil {
		return err
	}
	if t.c.closed() {
		return ErrClosed
	}
	t.saving.Add(1)
	defer t.saving.Add(-1)

	err := t.c.exec.Do(ctx, t.key, func(ctx context.Context) error {
		if err := api.DeleteEntry(ctx, t.c.rest, id); err != nil {
			return err
		}
		t.mu.Lock()
		for i := range t.entries {
			if t.entries[i].ID == id {
				t.entries = append(t.entries[:i:i], t.entries[i+1:]...)
				break
			}
		}
		t.mu.Unlock()
		return nil
	})
	if err != nil {
		err = mapQueueError(err)
		entryWriteFailuresTotal.WithLabelValues(t.shard, "delete").Inc()
		t.log.Error().Err(err).Str("entry_id", id).Msg("delete entry failed")
		return err
	}
	entryWritesTotal.WithLabelValues(t.shard, "delete").Inc()
	return nil
}

// ClearEntries empties the list without contacting the backend. Any Refresh
// still in flight will not repopulate it.
func (t *Timeline) ClearEntries() {
	t.mu.Lock()
	t.gen.Add(1)
	t.entries = nil
	t.mu.Unlock()
}
