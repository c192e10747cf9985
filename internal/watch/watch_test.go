package watch

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colorwatch/internal/output"
	"github.com/hupe1980/colorwatch/internal/palette"
	"github.com/hupe1980/colorwatch/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for one writer goroutine and one
// reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bytes.Clone(b.buf.Bytes())
}

func (b *syncBuffer) String() string { return string(b.Bytes()) }

func paletteDoc(value string) string {
	var sb strings.Builder
	for _, name := range palette.FieldNames {
		fmt.Fprintf(&sb, "%s = %q\n", name, value)
	}

	return sb.String()
}

func writePalette(t *testing.T, path, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
}

func decodeFrames(t *testing.T, data []byte) []palette.Palette {
	t.Helper()

	r := output.NewFrameReader(bytes.NewReader(data), binary.LittleEndian)

	var out []palette.Palette

	for {
		payload, err := r.Next()
		if err != nil {
			return out
		}

		var p palette.Palette
		require.NoError(t, json.Unmarshal(payload, &p))
		out = append(out, p)
	}
}

// fakeNotifier lets tests drive Run without touching the filesystem.
type fakeNotifier struct {
	events chan string
	errors chan error
	closed atomic.Bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(chan string), errors: make(chan error)}
}

func (f *fakeNotifier) Events() <-chan string { return f.events }
func (f *fakeNotifier) Errors() <-chan error  { return f.errors }
func (f *fakeNotifier) Close() error {
	f.closed.Store(true)
	return nil
}

func quietOptions(logs io.Writer) Options {
	opts := DefaultOptions()
	opts.Out = io.Discard
	opts.Logger = slog.New(slog.NewTextHandler(logs, nil))

	return opts
}

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_SingleEvent(t *testing.T) {
	var callCount atomic.Int32
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		callCount.Add(1)
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("colors.toml")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, "colors.toml", lastPath.Load())
}

func TestDebouncer_MultipleEventsCoalesced(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(100*time.Millisecond, func(string) {
		callCount.Add(1)
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger("colors.toml")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestDebouncer_ZeroIntervalFiresImmediately(t *testing.T) {
	var calls []string

	d := NewDebouncer(0, func(path string) {
		calls = append(calls, path)
	})

	d.Trigger("a")
	d.Trigger("b")
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func(string) {
		callCount.Add(1)
	})

	d.Trigger("colors.toml")
	d.Stop()
	d.Trigger("colors.toml")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
}

func TestDebouncer_RecoversFromPanic(t *testing.T) {
	d := NewDebouncer(0, func(string) { panic("boom") })
	assert.NotPanics(t, func() { d.Trigger("x") })
}

// ---------------------------------------------------------------------------
// Backend selection
// ---------------------------------------------------------------------------

func TestResolveBackend(t *testing.T) {
	got, err := ResolveBackend("")
	require.NoError(t, err)
	assert.Equal(t, defaultBackend, got)

	got, err = ResolveBackend(BackendFSNotify)
	require.NoError(t, err)
	assert.Equal(t, BackendFSNotify, got)

	_, err = ResolveBackend("kqueue")
	assert.ErrorContains(t, err, "invalid watch backend")
}

func TestNewNotifier_MissingFileIsSubscriptionError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	for _, backend := range []string{BackendAuto, BackendFSNotify} {
		t.Run(backend, func(t *testing.T) {
			n, err := NewNotifier(backend, missing, 0)
			require.Error(t, err)
			assert.Nil(t, n)

			var subErr *SubscriptionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, missing, subErr.Path)
		})
	}
}

func TestNewNotifier_UnknownBackend(t *testing.T) {
	_, err := NewNotifier("kqueue", "colors.toml", 0)

	var subErr *SubscriptionError
	assert.ErrorAs(t, err, &subErr)
}

// ---------------------------------------------------------------------------
// fsnotify backend
// ---------------------------------------------------------------------------

func TestFSNotify_WriteProducesOneNotification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.toml")
	writePalette(t, path, "a")

	n, err := NewNotifier(BackendFSNotify, path, 50*time.Millisecond)
	require.NoError(t, err)
	defer n.Close()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = f.WriteString("chunk\n")
		require.NoError(t, err)
	}

	require.NoError(t, f.Close())

	select {
	case got := <-n.Events():
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification for write")
	}

	select {
	case got := <-n.Events():
		t.Fatalf("unexpected second notification %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFSNotify_IgnoresReadsAndChmod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.toml")
	writePalette(t, path, "a")

	n, err := NewNotifier(BackendFSNotify, path, 0)
	require.NoError(t, err)
	defer n.Close()

	_, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(path, 0o644))

	select {
	case got := <-n.Events():
		t.Fatalf("unexpected notification %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFSNotify_CloseEndsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.toml")
	writePalette(t, path, "a")

	n, err := NewNotifier(BackendFSNotify, path, 0)
	require.NoError(t, err)
	require.NoError(t, n.Close())
	assert.NoError(t, n.Close(), "Close is idempotent")

	_, ok := <-n.Events()
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Run with a fake notifier
// ---------------------------------------------------------------------------

func TestRun_InitialRunThenOnePerEvent(t *testing.T) {
	fake := newFakeNotifier()

	var logs syncBuffer
	opts := quietOptions(&logs)
	opts.Path = "colors.toml"
	opts.Notifier = fake

	var paths []string

	var mu sync.Mutex

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), opts, func(_ context.Context, path string) (*pipeline.Result, error) {
			mu.Lock()
			defer mu.Unlock()

			paths = append(paths, path)

			return &pipeline.Result{Bytes: 1}, nil
		})
	}()

	fake.events <- "colors.toml"
	fake.events <- "colors.toml"
	fake.errors <- &ChannelError{Err: ErrEventOverflow}
	close(fake.events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after events closed")
	}

	assert.Equal(t, []string{"colors.toml", "colors.toml", "colors.toml"}, paths)
	assert.True(t, fake.closed.Load(), "Run closes the notifier")
	assert.Contains(t, logs.String(), "event queue overflow")
	assert.Contains(t, logs.String(), "watch ended")
}

func TestRun_ErrorsAreAbsorbed(t *testing.T) {
	fake := newFakeNotifier()

	var logs syncBuffer
	opts := quietOptions(&logs)
	opts.Notifier = fake

	var calls atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), opts, func(_ context.Context, _ string) (*pipeline.Result, error) {
			calls.Add(1)
			return nil, &palette.ValidationError{Field: "base02", Value: "#zz"}
		})
	}()

	fake.events <- "colors.toml"
	close(fake.events)

	require.NoError(t, <-done)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, strings.Count(logs.String(), "field=base02"))
}

func TestRun_SinkErrorIsFatal(t *testing.T) {
	fake := newFakeNotifier()

	var logs syncBuffer
	opts := quietOptions(&logs)
	opts.Notifier = fake

	err := Run(context.Background(), opts, func(_ context.Context, _ string) (*pipeline.Result, error) {
		return nil, &pipeline.SinkError{Err: io.ErrClosedPipe}
	})

	var sinkErr *pipeline.SinkError
	require.ErrorAs(t, err, &sinkErr)
	assert.True(t, fake.closed.Load())
}

func TestRun_GracefulShutdown(t *testing.T) {
	fake := newFakeNotifier()

	ctx, cancel := context.WithCancel(context.Background())

	var logs syncBuffer
	opts := quietOptions(&logs)
	opts.Notifier = fake

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(_ context.Context, _ string) (*pipeline.Result, error) {
			return &pipeline.Result{}, nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down in time")
	}
}

func TestRun_MissingFile(t *testing.T) {
	var logs syncBuffer
	opts := quietOptions(&logs)
	opts.Path = filepath.Join(t.TempDir(), "missing.toml")

	called := false
	err := Run(context.Background(), opts, func(_ context.Context, _ string) (*pipeline.Result, error) {
		called = true
		return &pipeline.Result{}, nil
	})

	var subErr *SubscriptionError
	require.ErrorAs(t, err, &subErr)
	assert.False(t, called, "no processing without a watch")
}

func TestRun_StatusLines(t *testing.T) {
	fake := newFakeNotifier()

	var out, logs syncBuffer
	opts := quietOptions(&logs)
	opts.Notifier = fake
	opts.Path = "colors.toml"
	opts.Out = &out

	results := []*pipeline.Result{
		{Bytes: 10, First: true},
		{Bytes: 11, Changes: []palette.Change{{Field: "base08"}}},
	}

	var i atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), opts, func(_ context.Context, _ string) (*pipeline.Result, error) {
			return results[i.Add(1)-1], nil
		})
	}()

	fake.events <- "colors.toml"
	close(fake.events)
	require.NoError(t, <-done)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "(initial) → OK (10 bytes)")
	assert.NotContains(t, lines[0], "changed")
	assert.Contains(t, lines[1], "colors.toml → OK (11 bytes) ~1 color(s) changed: base08")
	assert.NotContains(t, out.String(), "\x1b[", "no color codes when disabled")
}

func TestRun_QuietSuppressesStatus(t *testing.T) {
	fake := newFakeNotifier()
	close(fake.events)

	var out, logs syncBuffer
	opts := quietOptions(&logs)
	opts.Notifier = fake
	opts.Out = &out
	opts.Quiet = true

	require.NoError(t, Run(context.Background(), opts, func(_ context.Context, _ string) (*pipeline.Result, error) {
		return &pipeline.Result{First: true}, nil
	}))
	assert.Empty(t, out.String())
}

// ---------------------------------------------------------------------------
// End-to-end with the platform backend and the real pipeline
// ---------------------------------------------------------------------------

func TestRun_EndToEnd(t *testing.T) {
	for _, backend := range []string{BackendAuto, BackendFSNotify} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "colors.toml")
			writePalette(t, path, paletteDoc("#000000"))

			var sink, logs syncBuffer

			logger := slog.New(slog.NewTextHandler(&logs, nil))
			p := pipeline.New(output.NewFrameWriter(&sink, binary.LittleEndian), logger)

			opts := quietOptions(&logs)
			opts.Logger = logger
			opts.Path = path
			opts.Backend = backend
			opts.Debounce = 20 * time.Millisecond

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error, 1)
			go func() { done <- Run(ctx, opts, p.Process) }()

			frameCount := func() int { return len(decodeFrames(t, sink.Bytes())) }

			require.Eventually(t, func() bool { return frameCount() == 1 }, 2*time.Second, 10*time.Millisecond,
				"initial frame")

			writePalette(t, path, paletteDoc("#FfFfFf"))
			require.Eventually(t, func() bool { return frameCount() == 2 }, 2*time.Second, 10*time.Millisecond,
				"frame after rewrite")

			frames := decodeFrames(t, sink.Bytes())
			assert.Equal(t, "#000000", frames[0].Base0F)
			assert.Equal(t, "#FfFfFf", frames[1].Base00)

			writePalette(t, path, strings.Replace(paletteDoc("#FfFfFf"), `base04 = "#FfFfFf"`, `base04 = "#zz"`, 1))
			require.Eventually(t, func() bool { return strings.Contains(logs.String(), "field=base04") },
				2*time.Second, 10*time.Millisecond, "validation error logged")

			// Reading the file never triggers processing.
			_, err := os.ReadFile(path)
			require.NoError(t, err)
			time.Sleep(150 * time.Millisecond)
			assert.Equal(t, 2, frameCount(), "no frame for invalid palette or reads")

			cancel()
			require.NoError(t, <-done)
		})
	}
}
