package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "user-directory/pkg/errors"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

func setupList(t *testing.T, src *fakeSource) (*ListController, *clockwork.FakeClock, *navRecorder) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	nav := &navRecorder{}
	c := NewListController(src, nav, Options{Clock: clock, Logger: zaptest.NewLogger(t)})
	t.Cleanup(c.Close)
	return c, clock, nav
}

func settle(t *testing.T, c *ListController) ListState {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	s, err := c.WaitSettled(ctx)
	require.NoError(t, err)
	return s
}

func filteredIDs(s ListState) []int64 {
	ids := make([]int64, 0, len(s.FilteredUsers))
	for _, u := range s.FilteredUsers {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestListController_InitialState(t *testing.T) {
	c, _, _ := setupList(t, &fakeSource{})

	s := c.State()
	assert.False(t, s.Loading)
	assert.NotNil(t, s.Users)
	assert.Empty(t, s.Users)
	assert.Empty(t, s.FilteredUsers)
	assert.Empty(t, s.Error)
}

func TestListController_LoadSuccess(t *testing.T) {
	src := &fakeSource{results: []result{{users: directory()}}}
	c, _, _ := setupList(t, src)

	c.Activate(context.Background())
	s := settle(t, c)

	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.Len(t, s.Users, 3)
	assert.Equal(t, []int64{1, 2, 3}, filteredIDs(s))
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestListController_LoadFailure(t *testing.T) {
	src := &fakeSource{results: []result{{err: apperrors.FromStatus(500, "500 Internal Server Error")}}}
	c, _, _ := setupList(t, src)

	c.Activate(context.Background())
	s := settle(t, c)

	assert.False(t, s.Loading)
	assert.Equal(t, apperrors.MsgServer, s.Error)
	assert.Empty(t, s.Users)
	assert.Empty(t, s.FilteredUsers)
}

func TestListController_LoadingWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{results: []result{{users: directory(), gate: gate}}}
	c, _, _ := setupList(t, src)

	c.Activate(context.Background())
	s := c.State()
	assert.True(t, s.Loading)
	assert.Empty(t, s.Error)

	close(gate)
	s = settle(t, c)
	assert.False(t, s.Loading)
	assert.Len(t, s.Users, 3)
}

func TestListController_RetryAfterFailure(t *testing.T) {
	src := &fakeSource{results: []result{
		{err: apperrors.NewConnectivityError(nil)},
		{users: directory()},
	}}
	c, _, _ := setupList(t, src)

	c.Activate(context.Background())
	s := settle(t, c)
	require.Equal(t, apperrors.MsgConnectivity, s.Error)

	c.Retry()
	s = settle(t, c)

	assert.Empty(t, s.Error, "retry clears the error")
	assert.Len(t, s.Users, 3)
	assert.Equal(t, int32(2), src.calls.Load(), "exactly one fetch per retry")
}

func TestListController_FailureKeepsPreviousUsers(t *testing.T) {
	src := &fakeSource{results: []result{
		{users: directory()},
		{err: apperrors.FromStatus(404, "404 Not Found")},
	}}
	c, _, _ := setupList(t, src)

	c.Activate(context.Background())
	settle(t, c)

	c.Retry()
	s := settle(t, c)
	assert.Equal(t, apperrors.MsgNotFound, s.Error)
	assert.Len(t, s.Users, 3)
}

func TestListController_DebouncedSearch(t *testing.T) {
	src := &fakeSource{results: []result{{users: directory()}}}
	c, clock, _ := setupList(t, src)

	c.Activate(context.Background())
	settle(t, c)

	c.SetSearch("jane")
	s := c.State()
	assert.Equal(t, "jane", s.SearchInput)
	assert.Equal(t, "", s.Search, "input is not applied before the quiet period")
	assert.Len(t, s.FilteredUsers, 3)

	clock.Advance(DefaultSearchDebounce - time.Millisecond)
	assert.Equal(t, "", c.State().Search)

	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool { return c.State().Search == "jane" }, waitFor, tick)

	s = c.State()
	assert.Equal(t, []int64{2}, filteredIDs(s))
	assert.Len(t, s.Users, 3, "the full collection is untouched")
	assert.Equal(t, int32(1), src.calls.Load(), "filtering never refetches")
}

func TestListController_SearchRestartsQuietPeriod(t *testing.T) {
	src := &fakeSource{results: []result{{users: directory()}}}
	c, clock, _ := setupList(t, src)

	c.Activate(context.Background())
	settle(t, c)

	c.SetSearch("j")
	clock.Advance(200 * time.Millisecond)
	c.SetSearch("jo")
	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, "", c.State().Search)

	clock.Advance(100 * time.Millisecond)
	assert.Eventually(t, func() bool { return c.State().Search == "jo" }, waitFor, tick)
	assert.Equal(t, []int64{1, 3}, filteredIDs(c.State()))
}

func TestListController_ApplySearchIsImmediate(t *testing.T) {
	src := &fakeSource{results: []result{{users: directory()}}}
	c, _, _ := setupList(t, src)

	c.Activate(context.Background())
	settle(t, c)

	c.ApplySearch("BOB")
	s := c.State()
	assert.Equal(t, "BOB", s.Search)
	assert.Equal(t, []int64{3}, filteredIDs(s))
}

func TestListController_ClearSearch(t *testing.T) {
	src := &fakeSource{results: []result{{users: directory()}}}
	c, clock, _ := setupList(t, src)

	c.Activate(context.Background())
	settle(t, c)

	c.ApplySearch("jane")
	require.Equal(t, []int64{2}, filteredIDs(c.State()))

	c.ClearSearch()
	assert.Equal(t, "", c.State().SearchInput)

	clock.Advance(DefaultSearchDebounce)
	assert.Eventually(t, func() bool { return len(c.State().FilteredUsers) == 3 }, waitFor, tick)
	assert.Equal(t, "", c.State().Search)
}

func TestListController_SearchAppliedToLaterLoad(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{results: []result{{users: directory(), gate: gate}}}
	c, _, _ := setupList(t, src)

	c.Activate(context.Background())
	c.ApplySearch("smith")
	assert.Empty(t, c.State().FilteredUsers)

	close(gate)
	s := settle(t, c)
	assert.Equal(t, []int64{2}, filteredIDs(s))
}

func TestListController_StaleResultDiscarded(t *testing.T) {
	slow := make(chan struct{})
	src := &fakeSource{results: []result{
		{err: apperrors.FromStatus(500, ""), gate: slow},
		{users: directory()},
	}}
	c, _, _ := setupList(t, src)

	c.Activate(context.Background())
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, waitFor, tick)
	c.Retry()
	s := settle(t, c)
	require.Len(t, s.Users, 3)

	close(slow)
	time.Sleep(20 * time.Millisecond)

	s = c.State()
	assert.Empty(t, s.Error, "the superseded failure must not overwrite the newer result")
	assert.Len(t, s.Users, 3)
	assert.False(t, s.Loading)
}

func TestListController_SelectUser(t *testing.T) {
	c, _, nav := setupList(t, &fakeSource{})

	c.SelectUser(2)
	assert.Equal(t, []string{"/users/2"}, nav.Paths())
}

func TestListController_Subscribe(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{results: []result{{users: directory(), gate: gate}}}
	c, _, _ := setupList(t, src)

	var mu sync.Mutex
	var seen []ListState
	unsubscribe := c.Subscribe(func(s ListState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	c.Activate(context.Background())
	close(gate)
	settle(t, c)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, waitFor, tick)

	mu.Lock()
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[1].Loading)
	assert.Len(t, seen[1].Users, 3)
	mu.Unlock()

	unsubscribe()
	c.ApplySearch("jane")

	mu.Lock()
	assert.Len(t, seen, 2, "no delivery after unsubscribe")
	mu.Unlock()
}

func TestListController_Close(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	src := &fakeSource{results: []result{{users: directory(), gate: gate}}}
	c, clock, _ := setupList(t, src)

	calls := 0
	c.Subscribe(func(ListState) { calls++ })

	c.Activate(context.Background())
	c.SetSearch("jane")
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, waitFor, tick)
	before := calls

	c.Close()

	// the in-flight fetch observes cancellation and its result is dropped
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	_, err := c.WaitSettled(ctx)
	require.NoError(t, err)

	clock.Advance(DefaultSearchDebounce)
	c.Retry()
	c.ApplySearch("bob")
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, before, calls, "a closed controller publishes nothing")
	assert.Equal(t, "", c.State().Search)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestListController_ActivationCanceledByParent(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	src := &fakeSource{results: []result{{users: directory(), gate: gate}}}
	c, _, _ := setupList(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	c.Activate(ctx)
	cancel()

	s := settle(t, c)
	assert.False(t, s.Loading)
	assert.Equal(t, apperrors.MsgUnexpected, s.Error)
}
