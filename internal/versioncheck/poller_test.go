package versioncheck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChecker answers lookups from a script of responses. Once the script is exhausted, the last response repeats.
type fakeChecker struct {
	mu        sync.Mutex
	responses []response
	calls     int
}

type response struct {
	version string
	err     error
}

func newFakeChecker(responses ...response) *fakeChecker {
	return &fakeChecker{responses: responses}
}

func (f *fakeChecker) LatestVersion(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	return f.responses[i].version, f.responses[i].err
}

func (f *fakeChecker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeChecker) Set(r response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = []response{r}
	f.calls = 0
}

type checkerFunc func(ctx context.Context) (string, error)

func (f checkerFunc) LatestVersion(ctx context.Context) (string, error) {
	return f(ctx)
}

var errNetwork = errors.New("dial tcp: connection refused")

func TestPoller_Check(t *testing.T) {
	testCases := []struct {
		name     string
		baseline string
		fetched  response
		want     State
	}{
		{
			name:     "same version",
			baseline: "1.2.0",
			fetched:  response{version: "1.2.0"},
			want:     State{CurrentVersion: "1.2.0"},
		},
		{
			name:     "different version",
			baseline: "1.2.0",
			fetched:  response{version: "1.3.0"},
			want:     State{UpdateAvailable: true, NewVersion: "1.3.0", CurrentVersion: "1.2.0"},
		},
		{
			name:     "older version deployed",
			baseline: "1.2.0",
			fetched:  response{version: "1.1.0"},
			want:     State{UpdateAvailable: true, NewVersion: "1.1.0", CurrentVersion: "1.2.0"},
		},
		{
			name:     "dev baseline",
			baseline: "dev",
			fetched:  response{version: "1.0.0"},
			want:     State{CurrentVersion: "dev"},
		},
		{
			name:     "dev deployed",
			baseline: "1.0.0",
			fetched:  response{version: "dev"},
			want:     State{CurrentVersion: "1.0.0"},
		},
		{
			name:     "empty baseline is a dev build",
			baseline: "",
			fetched:  response{version: "1.0.0"},
			want:     State{CurrentVersion: "dev"},
		},
		{
			name:     "network error",
			baseline: "1.2.0",
			fetched:  response{err: errNetwork},
			want:     State{CurrentVersion: "1.2.0"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(newFakeChecker(tc.fetched), Options{Baseline: tc.baseline})

			p.Check(context.Background())

			assert.Equal(t, tc.want, p.State())
		})
	}
}

func TestPoller_CheckSwallowsPanics(t *testing.T) {
	p := New(checkerFunc(func(context.Context) (string, error) {
		panic("boom")
	}), Options{Baseline: "1.0.0"})

	assert.NotPanics(t, func() { p.Check(context.Background()) })
	assert.Equal(t, State{CurrentVersion: "1.0.0"}, p.State())
}

func TestPoller_FailureDoesNotRegress(t *testing.T) {
	checker := newFakeChecker(response{version: "1.3.0"}, response{err: errNetwork}, response{version: "1.2.0"})
	p := New(checker, Options{Baseline: "1.2.0"})
	want := State{UpdateAvailable: true, NewVersion: "1.3.0", CurrentVersion: "1.2.0"}

	p.Check(context.Background())
	assert.Equal(t, want, p.State())

	// failed check
	p.Check(context.Background())
	assert.Equal(t, want, p.State())

	// the baseline is deployed again, but the update stays announced until reload
	p.Check(context.Background())
	assert.Equal(t, want, p.State())
}

func TestPoller_NewerDetectionReplacesVersion(t *testing.T) {
	checker := newFakeChecker(response{version: "1.3.0"}, response{version: "1.4.0"})
	p := New(checker, Options{Baseline: "1.2.0"})

	p.Check(context.Background())
	p.Check(context.Background())

	assert.Equal(t, State{UpdateAvailable: true, NewVersion: "1.4.0", CurrentVersion: "1.2.0"}, p.State())
}

func TestPoller_Changes(t *testing.T) {
	checker := newFakeChecker(response{version: "1.2.0"}, response{version: "1.3.0"}, response{version: "1.3.0"})
	p := New(checker, Options{Baseline: "1.2.0"})

	p.Check(context.Background())
	select {
	case <-p.Changes():
		t.Fatal("unexpected change notification for an unchanged state")
	default:
	}

	p.Check(context.Background())
	select {
	case <-p.Changes():
	default:
		t.Fatal("expected a change notification")
	}

	// same version again, no change
	p.Check(context.Background())
	select {
	case <-p.Changes():
		t.Fatal("unexpected change notification for an unchanged state")
	default:
	}
}

func TestPoller_ConcurrentChecksShareLookup(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	checker := checkerFunc(func(context.Context) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return "1.3.0", nil
	})
	p := New(checker, Options{Baseline: "1.2.0"})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Check(context.Background())
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, calls, 5)
	assert.GreaterOrEqual(t, calls, 1)
	assert.True(t, p.State().UpdateAvailable)
}

func TestPoller_StartRunsInitialAndPeriodicChecks(t *testing.T) {
	checker := newFakeChecker(response{version: "1.2.0"})
	p := New(checker, Options{Baseline: "1.2.0", InitialDelay: 5 * time.Millisecond, Interval: 10 * time.Millisecond})

	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return checker.Calls() >= 3 }, time.Second, 5*time.Millisecond)
	assert.False(t, p.State().UpdateAvailable)
}

func TestPoller_InitialDelay(t *testing.T) {
	checker := newFakeChecker(response{version: "1.2.0"})
	p := New(checker, Options{Baseline: "1.2.0", InitialDelay: 50 * time.Millisecond, Interval: time.Hour})

	p.Start(context.Background())
	defer p.Stop()

	assert.Equal(t, 0, checker.Calls())
	assert.Eventually(t, func() bool { return checker.Calls() == 1 }, time.Second, 5*time.Millisecond)
}

func TestPoller_StopPreventsFurtherMutation(t *testing.T) {
	checker := newFakeChecker(response{version: "1.2.0"})
	p := New(checker, Options{Baseline: "1.2.0", InitialDelay: 5 * time.Millisecond, Interval: 5 * time.Millisecond})

	p.Start(context.Background())
	require.Eventually(t, func() bool { return checker.Calls() >= 1 }, time.Second, time.Millisecond)
	p.Stop()

	checker.Set(response{version: "9.9.9"})
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, checker.Calls())
	assert.Equal(t, State{CurrentVersion: "1.2.0"}, p.State())

	// a stopped poller cannot be restarted and ignores manual checks
	p.Start(context.Background())
	p.Check(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, State{CurrentVersion: "1.2.0"}, p.State())
}

func TestPoller_StopBeforeInitialCheck(t *testing.T) {
	checker := newFakeChecker(response{version: "1.3.0"})
	p := New(checker, Options{Baseline: "1.2.0", InitialDelay: 20 * time.Millisecond, Interval: 20 * time.Millisecond})

	p.Start(context.Background())
	p.Stop()
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 0, checker.Calls())
	assert.False(t, p.State().UpdateAvailable)
}

func TestPoller_StopDuringLookup(t *testing.T) {
	started := make(chan struct{})
	checker := checkerFunc(func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		// a transport that ignores cancellation still yields a result
		return "1.3.0", nil
	})
	p := New(checker, Options{Baseline: "1.2.0", InitialDelay: time.Millisecond, Interval: time.Hour})

	p.Start(context.Background())
	<-started
	p.Stop()

	assert.Equal(t, State{CurrentVersion: "1.2.0"}, p.State())
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := New(newFakeChecker(response{version: "1.2.0"}), Options{Baseline: "1.2.0"})
	assert.NotPanics(t, p.Stop)
}

func TestNew_Defaults(t *testing.T) {
	p := New(newFakeChecker(response{version: "1.0.0"}), Options{})

	assert.Equal(t, DefaultInterval, p.opts.Interval)
	assert.Equal(t, DefaultInitialDelay, p.opts.InitialDelay)
	assert.Equal(t, "dev", p.State().CurrentVersion)
}

// scenario: baseline 1.2.0, the first two checks see 1.2.0 and the third sees 1.3.0
func TestPoller_ScheduledDetection(t *testing.T) {
	checker := newFakeChecker(response{version: "1.2.0"}, response{version: "1.2.0"}, response{version: "1.3.0"})
	p := New(checker, Options{Baseline: "1.2.0", InitialDelay: time.Millisecond, Interval: 10 * time.Millisecond})

	p.Start(context.Background())
	defer p.Stop()

	select {
	case <-p.Changes():
	case <-time.After(time.Second):
		t.Fatal("update was not detected")
	}
	assert.GreaterOrEqual(t, checker.Calls(), 3)
	assert.Equal(t, State{UpdateAvailable: true, NewVersion: "1.3.0", CurrentVersion: "1.2.0"}, p.State())
}

func TestIsUpdate(t *testing.T) {
	testCases := []struct {
		current string
		latest  string
		want    bool
	}{
		{current: "1.2.0", latest: "1.2.0", want: false},
		{current: "1.2.0", latest: "1.3.0", want: true},
		{current: "1.3.0", latest: "1.2.0", want: true},
		{current: "dev", latest: "1.3.0", want: false},
		{current: "1.2.0", latest: "dev", want: false},
		{current: "dev", latest: "dev", want: false},
	}
	for _, tt := range testCases {
		assert.Equal(t, tt.want, IsUpdate(tt.current, tt.latest), "%s -> %s", tt.current, tt.latest)
	}
}
