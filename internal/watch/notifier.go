package watch

import (
	"errors"
	"fmt"
	"time"
)

// Supported notification backends.
const (
	BackendAuto     = "auto"
	BackendInotify  = "inotify"
	BackendFSNotify = "fsnotify"
)

// ErrEventOverflow is reported when the kernel event queue overflowed
// and notifications were lost.
var ErrEventOverflow = errors.New("event queue overflow")

// Notifier delivers a notification each time the watched file has been
// written and closed. It owns the underlying OS watch for its lifetime.
//
// Events closes when the watch ends (Close was called or the kernel
// dropped the watch because the file was removed or renamed). Errors
// carries transient *ChannelError values and closes together with Events.
type Notifier interface {
	Events() <-chan string
	Errors() <-chan error
	Close() error
}

// SubscriptionError reports that the watch could not be established.
// It is fatal: without a watch there is nothing to do.
type SubscriptionError struct {
	Backend string
	Path    string
	Err     error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("watching %s (%s): %v", e.Path, e.Backend, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// ChannelError is a transient error surfaced by a running watch, such as
// lost events. Watching continues.
type ChannelError struct {
	Err error
}

func (e *ChannelError) Error() string { return "watch channel: " + e.Err.Error() }

func (e *ChannelError) Unwrap() error { return e.Err }

// ResolveBackend maps BackendAuto to the platform default and rejects
// unknown names.
func ResolveBackend(name string) (string, error) {
	switch name {
	case BackendAuto, "":
		return defaultBackend, nil
	case BackendInotify, BackendFSNotify:
		return name, nil
	default:
		return "", fmt.Errorf("invalid watch backend %q: must be one of auto, inotify, fsnotify", name)
	}
}

// NewNotifier subscribes to write-close notifications for path. The
// debounce interval only applies to the fsnotify backend.
func NewNotifier(backend, path string, debounce time.Duration) (Notifier, error) {
	resolved, err := ResolveBackend(backend)
	if err != nil {
		return nil, &SubscriptionError{Backend: backend, Path: path, Err: err}
	}

	if resolved == BackendInotify {
		n, err := newInotifyNotifier(path)
		if err != nil {
			return nil, err
		}

		return n, nil
	}

	n, err := newFSNotifyNotifier(path, debounce)
	if err != nil {
		return nil, err
	}

	return n, nil
}
