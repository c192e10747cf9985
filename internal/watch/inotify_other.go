//go:build !linux

package watch

import "errors"

const defaultBackend = BackendFSNotify

func newInotifyNotifier(path string) (Notifier, error) {
	return nil, &SubscriptionError{
		Backend: BackendInotify,
		Path:    path,
		Err:     errors.New("inotify is only available on linux"),
	}
}
