package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period the fsnotify backend waits after the
// last write before reporting the file as complete.
const DefaultDebounce = 100 * time.Millisecond

// fsnotifyNotifier is the portable backend. fsnotify reports individual
// writes rather than write-close, so bursts of writes are coalesced by a
// Debouncer into a single notification.
type fsnotifyNotifier struct {
	path      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	events    chan string
	errors    chan error
	done      chan struct{}

	// mu guards closed so the debouncer's timer goroutine never sends on
	// a closed events channel.
	mu     sync.Mutex
	closed bool

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newFSNotifyNotifier(path string, debounce time.Duration) (*fsnotifyNotifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &SubscriptionError{Backend: BackendFSNotify, Path: path, Err: err}
	}

	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, &SubscriptionError{Backend: BackendFSNotify, Path: path, Err: err}
	}

	n := &fsnotifyNotifier{
		path:    filepath.Clean(path),
		watcher: w,
		// One pending notification is enough: processing always reads the
		// file's current content.
		events: make(chan string, 1),
		errors: make(chan error),
		done:   make(chan struct{}),
	}
	n.debouncer = NewDebouncer(debounce, n.emit)

	n.wg.Add(1)

	go n.loop()

	return n, nil
}

func (n *fsnotifyNotifier) Events() <-chan string { return n.events }

func (n *fsnotifyNotifier) Errors() <-chan error { return n.errors }

// Close stops the watcher and waits for the event loop to exit.
func (n *fsnotifyNotifier) Close() error {
	var err error

	n.closeOnce.Do(func() {
		close(n.done)
		err = n.watcher.Close()
		n.wg.Wait()
	})

	return err
}

func (n *fsnotifyNotifier) loop() {
	defer n.wg.Done()
	defer n.shutdown()

	for {
		select {
		case <-n.done:
			return

		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}

			if n.isRelevant(event) {
				n.debouncer.Trigger(n.path)
			}

			// The watch does not survive the file being removed or replaced.
			if filepath.Clean(event.Name) == n.path && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
				return
			}

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}

			select {
			case n.errors <- &ChannelError{Err: err}:
			case <-n.done:
				return
			}
		}
	}
}

func (n *fsnotifyNotifier) emit(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}

	select {
	case n.events <- path:
	default:
		// A notification is already pending.
	}
}

func (n *fsnotifyNotifier) shutdown() {
	n.debouncer.Stop()

	n.mu.Lock()
	n.closed = true
	close(n.events)
	n.mu.Unlock()

	close(n.errors)
}

// isRelevant keeps only content writes to the watched file. Chmod,
// create, and open events are dropped silently.
func (n *fsnotifyNotifier) isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 || !event.Has(fsnotify.Write) {
		return false
	}

	return filepath.Clean(event.Name) == n.path
}
