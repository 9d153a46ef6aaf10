package watch

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklist/taskboard/internal/msg"
	"github.com/tasklist/taskboard/internal/notification"
	"github.com/tasklist/taskboard/internal/task"
	"github.com/tasklist/taskboard/internal/versioncheck"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeTasks struct {
	task.Service
	tasks []task.Task
}

func (f *fakeTasks) List(context.Context) ([]task.Task, error) {
	return f.tasks, nil
}

type fakeWatcher struct{}

func (fakeWatcher) Watch(ctx context.Context, fn func(task.Event)) error {
	fn(task.Event{Kind: task.EventResync})
	<-ctx.Done()
	return ctx.Err()
}

type latestVersion string

func (v latestVersion) LatestVersion(context.Context) (string, error) {
	return string(v), nil
}

func newTestView(poller *versioncheck.Poller, out io.Writer) *view {
	return &view{
		tasks: &fakeTasks{tasks: []task.Task{
			{ID: "1", Text: "ship it", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		}},
		banner: notification.NewBanner(poller, notification.ReloaderFunc(func() error { return nil })),
		out:    out,
	}
}

func TestView_Render(t *testing.T) {
	poller := versioncheck.New(latestVersion("1.1.0"), versioncheck.Options{Baseline: "1.0.0"})
	out := &bytes.Buffer{}
	v := newTestView(poller, out)

	require.NoError(t, v.render(context.Background()))
	assert.Contains(t, out.String(), "ship it")
	assert.NotContains(t, out.String(), msg.UpdateAvailable)
	assert.NotContains(t, out.String(), clearScreen)

	poller.Check(context.Background())
	out.Reset()
	v.clear = true

	require.NoError(t, v.render(context.Background()))
	assert.True(t, strings.HasPrefix(out.String(), clearScreen))
	assert.Contains(t, out.String(), msg.UpdateAvailable)
	assert.Contains(t, out.String(), "ship it")
}

func TestRun(t *testing.T) {
	poller := versioncheck.New(latestVersion("1.1.0"), versioncheck.Options{
		Baseline:     "1.0.0",
		InitialDelay: 10 * time.Millisecond,
		Interval:     time.Hour,
	})
	out := &syncBuffer{}
	v := newTestView(poller, out)
	in, input := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, poller, fakeWatcher{}, v, in)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), msg.UpdateAvailable)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "ship it")

	_, err := io.WriteString(input, "later\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return v.banner.Phase() == notification.PhaseSuppressed
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	_ = input.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}
