package view

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"

	domain "user-directory/internal/domain/user"
	"user-directory/internal/navigation"
	apperrors "user-directory/pkg/errors"
)

// DetailSource fetches a single user.
type DetailSource interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// DetailState is a snapshot of the detail view.
type DetailState struct {
	ID      int64        `json:"id"`
	User    *domain.User `json:"user"`
	Loading bool         `json:"loading"`
	Error   string       `json:"error,omitempty"`
}

// DetailController drives the user detail view.
type DetailController struct {
	source DetailSource
	nav    navigation.Navigator
	log    *zap.Logger
	pub    publisher[DetailState]

	mu   sync.Mutex
	lc   loader
	id   int64 // captured on activation; zero when invalid
	user *domain.User
	err  string
}

// NewDetailController creates a detail controller. nav may be nil.
func NewDetailController(source DetailSource, nav navigation.Navigator, opts Options) *DetailController {
	return &DetailController{
		source: source,
		nav:    nav,
		log:    opts.logger().Named("detail_view"),
	}
}

// ParseUserID returns the positive integer in raw, or false.
func ParseUserID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Activate reads the user ID from params and loads the user. An absent or
// invalid ID fails immediately without a request.
func (c *DetailController) Activate(ctx context.Context, params navigation.Params) {
	raw, _ := params.Get("id")
	id, ok := ParseUserID(raw)

	c.mu.Lock()
	if c.lc.closed {
		c.mu.Unlock()
		return
	}
	c.lc.activate(ctx)

	if !ok {
		c.id = 0
		c.err = apperrors.MsgInvalidUserID
		// retire any load started by an earlier activation
		c.lc.seq++
		c.lc.finish()
		snap, v := c.snapshotLocked(), c.lc.next()
		c.mu.Unlock()

		c.log.Debug("invalid user id", zap.String("id", raw))
		c.pub.publish(v, snap)
		return
	}

	c.id = id
	c.mu.Unlock()

	c.load()
}

// Retry reloads the user captured on activation. It does nothing when that
// ID was invalid.
func (c *DetailController) Retry() {
	c.load()
}

func (c *DetailController) load() {
	c.mu.Lock()
	if c.lc.closed || c.lc.ctx == nil || c.id <= 0 {
		c.mu.Unlock()
		return
	}
	seq := c.lc.begin()
	c.err = ""
	ctx, id := c.lc.ctx, c.id
	snap, v := c.snapshotLocked(), c.lc.next()
	c.mu.Unlock()

	c.pub.publish(v, snap)
	go c.fetch(ctx, seq, id)
}

func (c *DetailController) fetch(ctx context.Context, seq uint64, id int64) {
	u, err := c.source.GetUser(ctx, id)

	c.mu.Lock()
	if !c.lc.current(seq) {
		c.mu.Unlock()
		c.log.Debug("discarding stale detail result", zap.Int64("id", id), zap.Uint64("seq", seq))
		return
	}

	if err != nil {
		c.err = apperrors.Message(err)
		c.log.Debug("detail load failed", zap.Int64("id", id), zap.String("error", c.err))
	} else {
		c.user = u
	}
	c.lc.finish()
	snap, v := c.snapshotLocked(), c.lc.next()
	c.mu.Unlock()

	c.pub.publish(v, snap)
}

// BackToList navigates to the user list.
func (c *DetailController) BackToList() {
	if c.nav != nil {
		c.nav.Navigate(navigation.ListPath)
	}
}

// State returns the current snapshot.
func (c *DetailController) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for every subsequent state change.
func (c *DetailController) Subscribe(fn func(DetailState)) (unsubscribe func()) {
	return c.pub.subscribe(fn)
}

// WaitSettled blocks until no load is outstanding, the controller is
// closed, or ctx ends.
func (c *DetailController) WaitSettled(ctx context.Context) (DetailState, error) {
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

// Close tears the view down and cancels any in-flight load.
func (c *DetailController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lc.close()
}

func (c *DetailController) snapshotLocked() DetailState {
	var u *domain.User
	if c.user != nil {
		cp := *c.user
		u = &cp
	}
	return DetailState{
		ID:      c.id,
		User:    u,
		Loading: c.lc.loading,
		Error:   c.err,
	}
}
