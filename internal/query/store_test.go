package query

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(endpoint string) Key {
	return Key{Principal: "admin-1", Endpoint: endpoint}
}

func countingFetch(counter *atomic.Int32, data interface{}, tags []Tag) FetchFunc {
	return func(ctx context.Context) (interface{}, []Tag, error) {
		counter.Add(1)
		return data, tags, nil
	}
}

func waitUpdate(t *testing.T, sub *Subscription) Result {
	t.Helper()
	select {
	case res := <-sub.Updates():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription update")
		return Result{}
	}
}

func TestQueryServesCachedResult(t *testing.T) {
	store := NewStore(4, nil, nil)
	var calls atomic.Int32
	key := testKey("/api/grade-subject")
	fetch := countingFetch(&calls, "grades", []Tag{ListTag("grades")})

	first, err := store.Query(context.Background(), key, fetch)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, first.Status)
	require.Equal(t, "grades", first.Data)

	second, err := store.Query(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "grades", second.Data)
	assert.Equal(t, int32(1), calls.Load())
}

func TestConcurrentQueriesCollapseIntoOneFetch(t *testing.T) {
	store := NewStore(4, nil, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	key := testKey("/api/teacher")
	fetch := func(ctx context.Context) (interface{}, []Tag, error) {
		calls.Add(1)
		<-release
		return "teachers", []Tag{ListTag("teachers")}, nil
	}

	const workers = 8
	results := make([]Result, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			res, err := store.Query(context.Background(), key, fetch)
			assert.NoError(t, err)
			results[i] = res
		}()
	}

	// Give every goroutine time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, res := range results {
		assert.Equal(t, "teachers", res.Data)
	}
}

func TestInvalidateRefetchesSubscribedEntryOnce(t *testing.T) {
	store := NewStore(4, nil, nil)
	var calls atomic.Int32
	key := testKey("/api/student")
	fetch := countingFetch(&calls, "students", ListTags("students", []string{"s1", "s2"}))

	snapshot, sub := store.Subscribe(context.Background(), key, fetch)
	defer sub.Close()
	require.Equal(t, StatusUninitialized, snapshot.Status)

	initial := waitUpdate(t, sub)
	require.Equal(t, StatusSuccess, initial.Status)
	require.Equal(t, int32(1), calls.Load())

	store.Invalidate(context.Background(), []Tag{ItemTag("students", "s1")})

	refreshed := waitUpdate(t, sub)
	assert.Equal(t, StatusSuccess, refreshed.Status)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, store.Len())

	// No further refetch arrives for a single invalidation.
	select {
	case <-sub.Updates():
		t.Fatal("unexpected extra refetch")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInvalidateDropsEntryWithoutSubscribers(t *testing.T) {
	store := NewStore(4, nil, nil)
	var calls atomic.Int32
	key := testKey("/api/class")
	fetch := countingFetch(&calls, "classes", ListTags("classes", []string{"c1"}))

	_, err := store.Query(context.Background(), key, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	store.Invalidate(context.Background(), []Tag{ListTag("classes")})
	assert.Equal(t, 0, store.Len())

	// The next read starts from scratch.
	_, err = store.Query(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInvalidateIgnoresUnrelatedTags(t *testing.T) {
	store := NewStore(4, nil, nil)
	var calls atomic.Int32
	key := testKey("/api/paper")
	fetch := countingFetch(&calls, "papers", ListTags("papers", []string{"p1"}))

	_, sub := store.Subscribe(context.Background(), key, fetch)
	defer sub.Close()
	waitUpdate(t, sub)

	store.Invalidate(context.Background(), []Tag{ListTag("students")})

	select {
	case <-sub.Updates():
		t.Fatal("unrelated invalidation must not refetch")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestErrorKeepsLastKnownGoodData(t *testing.T) {
	store := NewStore(4, nil, nil)
	var fail atomic.Bool
	key := testKey("/api/live")
	fetch := func(ctx context.Context) (interface{}, []Tag, error) {
		if fail.Load() {
			return nil, nil, fmt.Errorf("backend down")
		}
		return "lives", []Tag{ListTag("lives")}, nil
	}

	_, sub := store.Subscribe(context.Background(), key, fetch)
	defer sub.Close()
	initial := waitUpdate(t, sub)
	require.Equal(t, StatusSuccess, initial.Status)

	fail.Store(true)
	store.Invalidate(context.Background(), []Tag{ListTag("lives")})

	degraded := waitUpdate(t, sub)
	assert.Equal(t, StatusError, degraded.Status)
	assert.NotNil(t, degraded.Err)
	assert.Equal(t, "lives", degraded.Data)
	assert.False(t, degraded.Fetching)
}

func TestEntryNeverReturnsToUninitialized(t *testing.T) {
	store := NewStore(4, nil, nil)
	var calls atomic.Int32
	key := testKey("/api/enroll")
	fetch := countingFetch(&calls, "requests", ListTags("requests", []string{"r1"}))

	_, sub := store.Subscribe(context.Background(), key, fetch)
	defer sub.Close()
	waitUpdate(t, sub)

	store.Invalidate(context.Background(), []Tag{ListTag("requests")})
	waitUpdate(t, sub)

	res, ok := store.Snapshot(key)
	require.True(t, ok)
	assert.NotEqual(t, StatusUninitialized, res.Status)
}

func TestKeyStringIsDeterministic(t *testing.T) {
	a := Key{Principal: "u1", Endpoint: "/api/student", Params: url.Values{
		"grade":  {"7"},
		"status": {"active"},
	}}
	b := Key{Principal: "u1", Endpoint: "/api/student", Params: url.Values{
		"status": {"active"},
		"grade":  {"7"},
	}}
	assert.Equal(t, a.String(), b.String())

	c := Key{Principal: "u2", Endpoint: "/api/student", Params: a.Params}
	assert.NotEqual(t, a.String(), c.String())
}

func TestListTagsSkipEmptyIDs(t *testing.T) {
	tags := ListTags("papers", []string{"p1", "", "p2"})
	require.Len(t, tags, 3)
	assert.Equal(t, ListTag("papers"), tags[0])
	assert.Equal(t, ItemTag("papers", "p1"), tags[1])
	assert.Equal(t, ItemTag("papers", "p2"), tags[2])
}

func TestFetchOutlivesCancelledCaller(t *testing.T) {
	store := NewStore(4, nil, nil)
	release := make(chan struct{})
	key := testKey("/api/student")
	fetch := func(ctx context.Context) (interface{}, []Tag, error) {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-release:
			return "students", []Tag{ListTag("students")}, nil
		}
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = store.Query(firstCtx, key, fetch)
	}()

	time.Sleep(20 * time.Millisecond)
	var second Result
	var secondErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, secondErr = store.Query(context.Background(), key, fetch)
	}()

	// Cancel the caller that started the shared fetch while it is in flight.
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, secondErr)
	assert.Equal(t, StatusSuccess, second.Status)
	assert.Equal(t, "students", second.Data)
}

func TestSubscribeFetchSurvivesRequestContext(t *testing.T) {
	store := NewStore(4, nil, nil)
	release := make(chan struct{})
	key := testKey("/api/enroll")
	fetch := func(ctx context.Context) (interface{}, []Tag, error) {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-release:
			return "requests", []Tag{ListTag("enrollments")}, nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	_, sub := store.Subscribe(ctx, key, fetch)
	defer sub.Close()

	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	res := waitUpdate(t, sub)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "requests", res.Data)
}
