package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

// Status is the lifecycle state of one cached query. Entries never return to
// StatusUninitialized once data has been seen; invalidation refetches behind
// the last-known-good payload instead.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusSuccess       Status = "success"
	StatusError         Status = "error"
)

// Result is the subscriber-visible snapshot of a query.
type Result struct {
	Status    Status           `json:"status"`
	Fetching  bool             `json:"fetching"`
	Data      interface{}      `json:"data,omitempty"`
	Err       *appErrors.Error `json:"error,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// FetchFunc loads fresh data for a query and reports the tags the result
// provides. List fetches are expected to return ListTags so item-level
// mutations can target them.
type FetchFunc func(ctx context.Context) (interface{}, []Tag, error)

// Metrics receives store observations. Implemented by the metrics service.
type Metrics interface {
	RecordQueryLookup(hit bool)
	RecordQueryDedup()
	RecordInvalidation(entries int)
	RecordRefetch()
}

type entry struct {
	key    Key
	fetch  FetchFunc
	tags   []Tag
	result Result

	nextWatcher int
	watchers    map[int]chan Result
}

func (e *entry) subscriberCount() int {
	return len(e.watchers)
}

// Store is the process-wide query cache with tag-based invalidation. All
// reads funnel through Query or Subscribe; mutations never touch cached data
// directly, they call Invalidate with the tags they declare.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	group       singleflight.Group
	watchBuffer int
	metrics     Metrics
	logger      *zap.Logger
}

// NewStore constructs an empty store.
func NewStore(watchBuffer int, metrics Metrics, logger *zap.Logger) *Store {
	if watchBuffer <= 0 {
		watchBuffer = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries:     make(map[string]*entry),
		watchBuffer: watchBuffer,
		metrics:     metrics,
		logger:      logger,
	}
}

// Query resolves the key through the cache. A fresh entry is served as-is;
// otherwise the fetch runs, with concurrent identical calls collapsed into a
// single upstream request whose result fans out to every caller. The entry
// keeps the most recently supplied fetch for later refetches, so every
// caller of one key must pass an equivalent closure.
func (s *Store) Query(ctx context.Context, key Key, fetch FetchFunc) (Result, error) {
	id := key.String()

	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{
			key:      key,
			fetch:    fetch,
			result:   Result{Status: StatusUninitialized},
			watchers: make(map[int]chan Result),
		}
		s.entries[id] = e
	}
	e.fetch = fetch
	if e.result.Status == StatusSuccess && !e.result.Fetching {
		res := e.result
		s.mu.Unlock()
		s.recordLookup(true)
		return res, nil
	}
	s.mu.Unlock()
	s.recordLookup(false)

	// The shared fetch outlives any single caller; a cancelled request must
	// not poison the result fanned out to the others.
	detached := context.WithoutCancel(ctx)
	res, err, shared := s.group.Do(id, func() (interface{}, error) {
		return s.executeFetch(detached, id), nil
	})
	if shared && s.metrics != nil {
		s.metrics.RecordQueryDedup()
	}
	if err != nil {
		return Result{}, err
	}

	final := res.(Result)
	if final.Err != nil {
		return final, final.Err
	}
	return final, nil
}

// Subscribe registers a live subscriber for the key and returns the current
// snapshot plus a Subscription whose channel receives every refresh. The
// initial fetch runs when the entry has never loaded.
func (s *Store) Subscribe(ctx context.Context, key Key, fetch FetchFunc) (Result, *Subscription) {
	id := key.String()

	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{
			key:      key,
			fetch:    fetch,
			result:   Result{Status: StatusUninitialized},
			watchers: make(map[int]chan Result),
		}
		s.entries[id] = e
	}
	e.fetch = fetch
	ch := make(chan Result, s.watchBuffer)
	watcherID := e.nextWatcher
	e.nextWatcher++
	e.watchers[watcherID] = ch
	needsFetch := e.result.Status == StatusUninitialized || e.result.Status == StatusLoading
	snapshot := e.result
	s.mu.Unlock()

	if needsFetch {
		detached := context.WithoutCancel(ctx)
		go func() {
			_, _, _ = s.group.Do(id, func() (interface{}, error) {
				return s.executeFetch(detached, id), nil
			})
		}()
	}

	return snapshot, &Subscription{store: s, key: id, id: watcherID, ch: ch}
}

// Invalidate marks every entry providing any of the tags stale. Entries with
// at least one live subscriber refetch exactly once; entries nobody watches
// are dropped and reload lazily on next use.
func (s *Store) Invalidate(ctx context.Context, tags []Tag) {
	if len(tags) == 0 {
		return
	}

	s.mu.Lock()
	var refetch []string
	touched := 0
	for id, e := range s.entries {
		if !intersects(e.tags, tags) {
			continue
		}
		touched++
		if e.subscriberCount() > 0 {
			e.result.Fetching = true
			refetch = append(refetch, id)
		} else {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordInvalidation(touched)
	}

	// Refetches outlive the mutation request that triggered them.
	detached := context.WithoutCancel(ctx)
	for _, id := range refetch {
		id := id
		go func() {
			if s.metrics != nil {
				s.metrics.RecordRefetch()
			}
			_, _, _ = s.group.Do(id, func() (interface{}, error) {
				return s.executeFetch(detached, id), nil
			})
		}()
	}
}

// Snapshot returns the current state of a key without fetching.
func (s *Store) Snapshot(key Key) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok {
		return Result{Status: StatusUninitialized}, false
	}
	return e.result, true
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) executeFetch(ctx context.Context, id string) Result {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return Result{Status: StatusUninitialized}
	}
	if e.result.Status == StatusUninitialized {
		e.result.Status = StatusLoading
	}
	e.result.Fetching = true
	fetch := e.fetch
	s.mu.Unlock()

	data, tags, err := fetch(ctx)

	s.mu.Lock()
	e, ok = s.entries[id]
	if !ok {
		// Dropped while in flight (navigated away); discard the result.
		s.mu.Unlock()
		if err != nil {
			return Result{Status: StatusError, Err: appErrors.FromError(err)}
		}
		return Result{Status: StatusSuccess, Data: data, UpdatedAt: time.Now().UTC()}
	}
	e.result.Fetching = false
	e.result.UpdatedAt = time.Now().UTC()
	if err != nil {
		// Last-known-good data stays visible behind the error state.
		e.result.Status = StatusError
		e.result.Err = appErrors.FromError(err)
		s.logger.Warn("query fetch failed",
			zap.String("key", id),
			zap.String("code", e.result.Err.Code),
			zap.Int("status", e.result.Err.Status))
	} else {
		e.result.Status = StatusSuccess
		e.result.Err = nil
		e.result.Data = data
		e.tags = tags
	}
	res := e.result
	watchers := make([]chan Result, 0, len(e.watchers))
	for _, ch := range e.watchers {
		watchers = append(watchers, ch)
	}
	s.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- res:
		default:
			// Slow watcher; it will catch up on the next refresh.
		}
	}

	return res
}

// Subscription is one live subscriber of a cached query.
type Subscription struct {
	store *Store
	key   string
	id    int
	ch    chan Result

	closeOnce sync.Once
}

// Updates delivers every refresh of the subscribed query.
func (sub *Subscription) Updates() <-chan Result {
	return sub.ch
}

// Close unregisters the subscriber. The cache entry stays behind with zero
// subscribers until a later invalidation drops it.
func (sub *Subscription) Close() {
	sub.closeOnce.Do(func() {
		sub.store.mu.Lock()
		if e, ok := sub.store.entries[sub.key]; ok {
			delete(e.watchers, sub.id)
		}
		sub.store.mu.Unlock()
	})
}

func (s *Store) recordLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordQueryLookup(hit)
	}
}
