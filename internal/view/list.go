package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	domain "user-directory/internal/domain/user"
	"user-directory/internal/navigation"
	apperrors "user-directory/pkg/errors"
)

// ListSource fetches the full user collection.
type ListSource interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ListState is a snapshot of the list view. Slices are shared between
// snapshots and must be treated as read-only.
type ListState struct {
	Users         []domain.User `json:"users"`
	FilteredUsers []domain.User `json:"filteredUsers"`
	Search        string        `json:"search"`      // applied term
	SearchInput   string        `json:"searchInput"` // raw input, not yet debounced
	Loading       bool          `json:"loading"`
	Error         string        `json:"error,omitempty"`
}

// ListController drives the user list view.
type ListController struct {
	source    ListSource
	nav       navigation.Navigator
	log       *zap.Logger
	debouncer *Debouncer
	pub       publisher[ListState]

	mu          sync.Mutex
	lc          loader
	users       []domain.User
	filtered    []domain.User
	search      string
	searchInput string
	err         string
}

// NewListController creates a list controller. nav may be nil when the
// caller has no navigation surface.
func NewListController(source ListSource, nav navigation.Navigator, opts Options) *ListController {
	c := &ListController{
		source:   source,
		nav:      nav,
		log:      opts.logger().Named("list_view"),
		users:    []domain.User{},
		filtered: []domain.User{},
	}
	c.debouncer = NewDebouncer(opts.Clock, opts.debounce(), c.applySearch)
	return c
}

// Activate starts the initial load; ctx bounds the lifetime of the view.
func (c *ListController) Activate(ctx context.Context) {
	c.mu.Lock()
	if c.lc.closed {
		c.mu.Unlock()
		return
	}
	c.lc.activate(ctx)
	c.mu.Unlock()

	c.load()
}

// Retry repeats the load sequence regardless of the current state.
func (c *ListController) Retry() {
	c.load()
}

func (c *ListController) load() {
	c.mu.Lock()
	if c.lc.closed || c.lc.ctx == nil {
		c.mu.Unlock()
		return
	}
	seq := c.lc.begin()
	c.err = ""
	ctx := c.lc.ctx
	snap, v := c.snapshotLocked(), c.lc.next()
	c.mu.Unlock()

	c.pub.publish(v, snap)
	go c.fetch(ctx, seq)
}

func (c *ListController) fetch(ctx context.Context, seq uint64) {
	users, err := c.source.ListUsers(ctx)

	c.mu.Lock()
	if !c.lc.current(seq) {
		c.mu.Unlock()
		c.log.Debug("discarding stale list result", zap.Uint64("seq", seq))
		return
	}

	if err != nil {
		c.err = apperrors.Message(err)
		c.log.Debug("list load failed", zap.String("error", c.err))
	} else {
		c.users = users
		c.filtered = domain.Filter(users, c.search)
	}
	c.lc.finish()
	snap, v := c.snapshotLocked(), c.lc.next()
	c.mu.Unlock()

	c.pub.publish(v, snap)
}

// SetSearch records raw search input; it is applied after the debounce
// period if it differs from the last applied term.
func (c *ListController) SetSearch(input string) {
	if !c.setInput(input) {
		return
	}
	c.debouncer.Push(input)
}

// ApplySearch records term and applies it without waiting for the debounce.
func (c *ListController) ApplySearch(term string) {
	if !c.setInput(term) {
		return
	}
	c.debouncer.Flush(term)
}

// ClearSearch resets the search input; the full collection is shown again
// once the debounce period elapses.
func (c *ListController) ClearSearch() {
	c.SetSearch("")
}

func (c *ListController) setInput(input string) bool {
	c.mu.Lock()
	if c.lc.closed {
		c.mu.Unlock()
		return false
	}
	c.searchInput = input
	snap, v := c.snapshotLocked(), c.lc.next()
	c.mu.Unlock()

	c.pub.publish(v, snap)
	return true
}

// applySearch recomputes the filtered view; it never touches the network.
func (c *ListController) applySearch(term string) {
	c.mu.Lock()
	if c.lc.closed {
		c.mu.Unlock()
		return
	}
	c.search = term
	c.filtered = domain.Filter(c.users, term)
	snap, v := c.snapshotLocked(), c.lc.next()
	c.mu.Unlock()

	c.pub.publish(v, snap)
}

// SelectUser navigates to the detail view of id.
func (c *ListController) SelectUser(id int64) {
	if c.nav != nil {
		c.nav.Navigate(navigation.UserPath(id))
	}
}

// State returns the current snapshot.
func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for every subsequent state change.
func (c *ListController) Subscribe(fn func(ListState)) (unsubscribe func()) {
	return c.pub.subscribe(fn)
}

// WaitSettled blocks until no load is outstanding, the controller is
// closed, or ctx ends.
func (c *ListController) WaitSettled(ctx context.Context) (ListState, error) {
	for {
		c.mu.Lock()
		ch := c.lc.waitChan()
		snap := c.snapshotLocked()
		c.mu.Unlock()

		if ch == nil {
			return snap, nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return c.State(), ctx.Err()
		}
	}
}

// Close tears the view down: in-flight loads are canceled and pending
// search input is dropped.
func (c *ListController) Close() {
	c.mu.Lock()
	closed := c.lc.close()
	c.mu.Unlock()

	if closed {
		c.debouncer.Stop()
	}
}

func (c *ListController) snapshotLocked() ListState {
	return ListState{
		Users:         c.users,
		FilteredUsers: c.filtered,
		Search:        c.search,
		SearchInput:   c.searchInput,
		Loading:       c.lc.loading,
		Error:         c.err,
	}
}
