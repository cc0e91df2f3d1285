package profile

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// State is the rendering state of a Viewer.
type State int

const (
	StateLoading State = iota
	StateError
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Rendered texts.
const (
	LoadingText = "Loading..."
	ErrorText   = "Error: Failed to fetch user data"
)

// Fetcher loads a user by id. *Client implements it.
type Fetcher interface {
	FetchUser(ctx context.Context, id string) (*User, error)
}

// Viewer shows one user profile at a time. Changing the user id cancels the
// in-flight fetch, and a result for a superseded id is discarded.
type Viewer struct {
	fetcher Fetcher

	mu      sync.Mutex
	userID  string
	started bool
	gen     uint64
	state   State
	user    *User
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewViewer returns a Viewer in the loading state.
func NewViewer(f Fetcher) *Viewer {
	done := make(chan struct{})
	close(done)
	return &Viewer{fetcher: f, state: StateLoading, done: done}
}

// SetUserID switches the viewer to id and starts fetching it. Setting the
// current id again is a no-op; use Reload to refetch.
func (v *Viewer) SetUserID(ctx context.Context, id string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.started && v.userID == id {
		return
	}
	v.startLocked(ctx, id)
}

// Reload refetches the current user id.
func (v *Viewer) Reload(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.started {
		return
	}
	v.startLocked(ctx, v.userID)
}

func (v *Viewer) startLocked(ctx context.Context, id string) {
	if v.cancel != nil {
		v.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)

	v.gen++
	gen := v.gen
	v.userID = id
	v.started = true
	v.state = StateLoading
	v.user = nil
	v.cancel = cancel
	done := make(chan struct{})
	v.done = done

	go func() {
		defer close(done)
		defer cancel()

		user, err := v.fetcher.FetchUser(fetchCtx, id)
		if err == nil && user == nil {
			err = errors.New("fetcher returned no user")
		}

		v.mu.Lock()
		defer v.mu.Unlock()
		if gen != v.gen {
			return
		}
		if err != nil {
			zctx.From(ctx).Debug("Fetch user failed", zap.String("user_id", id), zap.Error(err))
			v.state = StateError
			return
		}
		v.state = StateSuccess
		v.user = user
	}()
}

// Wait blocks until the latest fetch settles or ctx is done.
func (v *Viewer) Wait(ctx context.Context) error {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current state and, on success, a copy of the user.
func (v *Viewer) Snapshot() (State, *User) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.user == nil {
		return v.state, nil
	}
	u := *v.user
	return v.state, &u
}

// Render returns the text shown for the current state. Every failure renders
// the same ErrorText.
func (v *Viewer) Render() string {
	state, user := v.Snapshot()
	switch state {
	case StateSuccess:
		return user.Name + "\nEmail: " + user.Email
	case StateError:
		return ErrorText
	default:
		return LoadingText
	}
}

// Close cancels the in-flight fetch, if any, and keeps the current state.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.gen++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
