//go:build linux

package watch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

const defaultBackend = BackendInotify

// inotifyNotifier subscribes to IN_CLOSE_WRITE on a single file, so the
// kernel reports only completed writes and no debouncing is needed.
type inotifyNotifier struct {
	path   string
	file   *os.File
	events chan string
	errors chan error
	done   chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newInotifyNotifier(path string) (*inotifyNotifier, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, &SubscriptionError{Backend: BackendInotify, Path: path, Err: os.NewSyscallError("inotify_init1", err)}
	}

	if _, err := unix.InotifyAddWatch(fd, path, unix.IN_CLOSE_WRITE); err != nil {
		_ = unix.Close(fd)
		return nil, &SubscriptionError{Backend: BackendInotify, Path: path, Err: os.NewSyscallError("inotify_add_watch", err)}
	}

	n := &inotifyNotifier{
		path:   path,
		file:   os.NewFile(uintptr(fd), "inotify"),
		events: make(chan string),
		errors: make(chan error),
		done:   make(chan struct{}),
	}

	n.wg.Add(1)

	go n.readEvents()

	return n, nil
}

func (n *inotifyNotifier) Events() <-chan string { return n.events }

func (n *inotifyNotifier) Errors() <-chan error { return n.errors }

// Close removes the watch and waits for the reader goroutine to exit.
func (n *inotifyNotifier) Close() error {
	var err error

	n.closeOnce.Do(func() {
		close(n.done)
		err = n.file.Close()
		n.wg.Wait()
	})

	return err
}

func (n *inotifyNotifier) readEvents() {
	defer n.wg.Done()
	defer close(n.errors)
	defer close(n.events)

	buf := make([]byte, unix.SizeofInotifyEvent*64+unix.NAME_MAX+1)

	for {
		nr, err := n.file.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrClosed) {
				return
			}

			// A failing read will keep failing; report it and end the watch.
			n.sendError(&ChannelError{Err: err})

			return
		}

		masks, err := decodeMasks(buf[:nr])
		if err != nil && !n.sendError(&ChannelError{Err: err}) {
			return
		}

		for _, mask := range masks {
			switch {
			case mask&unix.IN_Q_OVERFLOW != 0:
				if !n.sendError(&ChannelError{Err: ErrEventOverflow}) {
					return
				}
			case mask&unix.IN_IGNORED != 0:
				// The kernel dropped the watch (file removed or renamed away).
				return
			case qualifies(mask):
				select {
				case n.events <- n.path:
				case <-n.done:
					return
				}
			}
		}
	}
}

func (n *inotifyNotifier) sendError(err error) bool {
	select {
	case n.errors <- err:
		return true
	case <-n.done:
		return false
	}
}

// qualifies reports whether an inotify mask describes a completed write
// to the watched file. Opens, reads, attribute changes, and moves never
// qualify.
func qualifies(mask uint32) bool {
	return mask&unix.IN_CLOSE_WRITE != 0 && mask&unix.IN_ISDIR == 0
}

// decodeMasks extracts the event masks from a raw inotify read. Records
// are struct inotify_event (wd, mask, cookie, len) followed by len bytes
// of name, all in host byte order.
func decodeMasks(buf []byte) ([]uint32, error) {
	var masks []uint32

	for off := 0; off < len(buf); {
		if len(buf)-off < unix.SizeofInotifyEvent {
			return masks, fmt.Errorf("short inotify record: %d bytes", len(buf)-off)
		}

		mask := binary.NativeEndian.Uint32(buf[off+4:])
		nameLen := int(binary.NativeEndian.Uint32(buf[off+12:]))

		masks = append(masks, mask)
		off += unix.SizeofInotifyEvent + nameLen
	}

	return masks, nil
}
