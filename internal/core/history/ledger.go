package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/restclient/internal/logging"
	"github.com/sadopc/restclient/internal/protocol"
)

// Capacity is the maximum number of entries the ledger keeps.
const Capacity = 50

// Ledger is the bounded, newest-first log of past requests. The sequence is
// loaded from its Store once and written back after every mutation.
type Ledger struct {
	mu       sync.RWMutex
	store    Store
	entries  []Entry
	capacity int
	now      func() time.Time
	newID    func(time.Time) string
	log      *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDFunc overrides entry id generation.
func WithIDFunc(fn func(time.Time) string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// WithCapacity overrides Capacity.
func WithCapacity(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// newEntryID returns a UUIDv7 whose leading 48 bits are t in milliseconds.
// Falls back to the bare millisecond timestamp.
func newEntryID(t time.Time) string {
	id, err := uuid.NewRandom()
	if err != nil {
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	ms := uint64(t.UnixMilli())
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}
	id[6] = id[6]&0x0f | 0x70
	return id.String()
}

// Open loads the ledger from store. Undecodable data is logged and replaced
// by an empty ledger; any other load error is returned.
func Open(ctx context.Context, store Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:    store,
		capacity: Capacity,
		now:      time.Now,
		newID:    newEntryID,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	entries, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorrupt):
		l.log.Warn("discarding unreadable history", "error", err)
		entries = nil
	case err != nil:
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if len(entries) > l.capacity {
		entries = entries[:l.capacity]
	}
	l.entries = entries
	return l, nil
}

// Record prepends an entry for (req, resp) and drops anything beyond the
// capacity. The entry is kept in memory even when persisting fails; the
// persistence error is returned alongside it.
func (l *Ledger) Record(ctx context.Context, req protocol.Request, resp *protocol.Response) (Entry, error) {
	now := l.now()
	entry := Entry{
		ID:        l.newID(now),
		Name:      Label(req.Method, req.URL),
		Config:    req.Clone(),
		Timestamp: now.UnixMilli(),
	}
	if resp != nil {
		r := resp.Clone()
		entry.Response = &r
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	keep := len(l.entries)
	if keep > l.capacity-1 {
		keep = l.capacity - 1
	}
	next := make([]Entry, 0, keep+1)
	next = append(next, entry)
	next = append(next, l.entries[:keep]...)
	l.entries = next

	l.log.Debug("recorded history entry", "id", entry.ID, "name", entry.Name)
	return entry.clone(), l.saveLocked(ctx)
}

// Remove deletes the entry with id. Unknown ids are ignored.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexLocked(id)
	if idx < 0 {
		return nil
	}
	next := make([]Entry, 0, len(l.entries)-1)
	next = append(next, l.entries[:idx]...)
	next = append(next, l.entries[idx+1:]...)
	l.entries = next
	return l.saveLocked(ctx)
}

// Clear empties the ledger. Clearing an empty ledger is not an error.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return l.saveLocked(ctx)
}

// Select returns the entry with id without changing the ledger.
func (l *Ledger) Select(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.indexLocked(id)
	if idx < 0 {
		return Entry{}, false
	}
	return l.entries[idx].clone(), true
}

// List returns the entries, newest first.
func (l *Ledger) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Search fuzzy-matches query against entry names and URLs, best match
// first. An empty query returns every entry.
func (l *Ledger) Search(query string) []Entry {
	entries := l.List()
	if query == "" {
		return entries
	}
	matches := fuzzy.FindFrom(query, searchSource(entries))
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}

type searchSource []Entry

func (s searchSource) String(i int) string { return s[i].Name + " " + s[i].Config.URL }
func (s searchSource) Len() int            { return len(s) }

func (l *Ledger) indexLocked(id string) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) saveLocked(ctx context.Context) error {
	snapshot := make([]Entry, len(l.entries))
	copy(snapshot, l.entries)
	if err := l.store.Save(ctx, snapshot); err != nil {
		l.log.Error("saving history failed", "error", err)
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}
