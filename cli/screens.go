package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/harperreed/shaft/viewmodel"
)

// errSignedOut is returned by data commands without a session.
var errSignedOut = errors.New("not signed in: run `shaft login` first")

type navRecorder struct {
	mu   sync.Mutex
	path string
}

func (n *navRecorder) Redirect(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

func (n *navRecorder) signedOut() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path == viewmodel.PathLogin
}

type screen interface {
	Mount(ctx context.Context)
	Unmount()
	Error() string
}

// mount loads sc and fails when there is no session or the fetch failed.
func mount(ctx context.Context, sc screen, nav *navRecorder) error {
	sc.Mount(ctx)
	if nav.signedOut() {
		sc.Unmount()
		return errSignedOut
	}
	if msg := sc.Error(); msg != "" {
		sc.Unmount()
		return errors.New(msg)
	}
	return nil
}
