package view

import (
	"context"
	"sync"
	"sync/atomic"

	domain "user-directory/internal/domain/user"
)

// result is one scripted response; a non-nil gate holds it back until closed.
type result struct {
	users []domain.User
	user  *domain.User
	err   error
	gate  chan struct{}
}

// fakeSource replays scripted results, one per call; the last result repeats.
type fakeSource struct {
	mu      sync.Mutex
	results []result
	calls   atomic.Int32
	ids     []int64
}

func (f *fakeSource) next(id int64) result {
	n := int(f.calls.Add(1)) - 1

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	if len(f.results) == 0 {
		return result{}
	}
	if n >= len(f.results) {
		n = len(f.results) - 1
	}
	return f.results[n]
}

func (f *fakeSource) wait(ctx context.Context, r result) error {
	if r.gate == nil {
		return nil
	}
	select {
	case <-r.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) ListUsers(ctx context.Context) ([]domain.User, error) {
	r := f.next(0)
	if err := f.wait(ctx, r); err != nil {
		return nil, err
	}
	return r.users, r.err
}

func (f *fakeSource) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	r := f.next(id)
	if err := f.wait(ctx, r); err != nil {
		return nil, err
	}
	return r.user, r.err
}

func (f *fakeSource) requestedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}

// navRecorder collects navigation requests.
type navRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (n *navRecorder) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *navRecorder) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func directory() []domain.User {
	return []domain.User{
		{ID: 1, Name: "John Doe", Username: "johndoe", Email: "john@example.com"},
		{ID: 2, Name: "Jane Smith", Username: "janesmith", Email: "jane@example.com"},
		{ID: 3, Name: "Bob Johnson", Username: "bobj", Email: "bob@example.com"},
	}
}
