// Package versioncheck detects that a newer build has been deployed while an older one is still running.
//
// A Poller periodically reads the deployed version marker and compares it to the baseline version
// the running client was built with. Lookup failures are never surfaced: they are logged at debug
// level and the next scheduled check serves as the retry.
package versioncheck

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/tasklist/taskboard/internal/schedule"
	"github.com/tasklist/taskboard/internal/version"
)

const (
	// DefaultInterval is the time between two checks.
	DefaultInterval = 60 * time.Second
	// DefaultInitialDelay defers the first check so that it does not compete with startup.
	DefaultInitialDelay = 5 * time.Second
)

// State is the result of version checking so far.
// If UpdateAvailable is true, NewVersion is set and differs from CurrentVersion.
type State struct {
	UpdateAvailable bool   `json:"updateAvailable"`
	NewVersion      string `json:"newVersion,omitempty"`
	CurrentVersion  string `json:"currentVersion"`
}

// Options configures a Poller.
type Options struct {
	// Baseline is the version of the running client. Empty means version.Sentinel.
	Baseline     string
	Interval     time.Duration
	InitialDelay time.Duration
}

// Poller periodically compares the deployed version against its baseline.
// The zero value is not usable, use New.
type Poller struct {
	checker version.Checker
	opts    Options

	mu      sync.RWMutex
	state   State
	stopped bool
	changes chan struct{}

	flight singleflight.Group

	taskMu sync.Mutex
	task   *schedule.Task
}

// New returns a Poller that looks up the deployed version with checker.
// Non-positive durations in opts are replaced by their defaults.
func New(checker version.Checker, opts Options) *Poller {
	if opts.Baseline == "" {
		opts.Baseline = version.Sentinel
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultInitialDelay
	}

	return &Poller{
		checker: checker,
		opts:    opts,
		state:   State{CurrentVersion: opts.Baseline},
		changes: make(chan struct{}, 1),
	}
}

// State returns a snapshot of the current state.
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Changes returns a channel that receives a value whenever the state changed.
// Notifications are coalesced: a reader that falls behind sees a single pending notification.
func (p *Poller) Changes() <-chan struct{} {
	return p.changes
}

// Check looks up the deployed version once and updates the state accordingly.
// Concurrent calls share a single lookup. Check never fails: lookup errors leave the state untouched.
func (p *Poller) Check(ctx context.Context) {
	_, _, _ = p.flight.Do("check", func() (interface{}, error) {
		p.check(ctx)
		return nil, nil
	})
}

func (p *Poller) check(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Str("panic", fmt.Sprint(r)).Msg("Version check failed.")
		}
	}()

	latest, err := p.checker.LatestVersion(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Version check failed.")
		return
	}

	if p.apply(latest) {
		log.Debug().Str("current", p.opts.Baseline).Str("latest", latest).Msg("New version detected.")
	}
}

// apply updates the state with the latest deployed version and reports whether anything changed.
func (p *Poller) apply(latest string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || !IsUpdate(p.state.CurrentVersion, latest) {
		return false
	}
	if p.state.UpdateAvailable && p.state.NewVersion == latest {
		return false
	}

	p.state.UpdateAvailable = true
	p.state.NewVersion = latest

	select {
	case p.changes <- struct{}{}:
	default:
	}
	return true
}

// IsUpdate returns true if latest denotes a different deployed build than current.
// Development builds never report updates, on either side.
func IsUpdate(current, latest string) bool {
	if version.IsSentinel(current) || version.IsSentinel(latest) {
		return false
	}
	return latest != current
}

// Start schedules the first check after the initial delay and further checks every interval, until Stop is called
// or ctx is done. Calling Start more than once, or after Stop, has no effect.
func (p *Poller) Start(ctx context.Context) {
	p.taskMu.Lock()
	defer p.taskMu.Unlock()

	p.mu.RLock()
	stopped := p.stopped
	p.mu.RUnlock()
	if p.task != nil || stopped {
		return
	}

	p.task = schedule.Every(ctx, p.opts.InitialDelay, p.opts.Interval, p.Check)
}

// Stop cancels all scheduled checks and waits for a check in progress to return.
// Once Stop returns, the state does not change anymore. A stopped Poller cannot be restarted.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.taskMu.Lock()
	defer p.taskMu.Unlock()
	if p.task != nil {
		p.task.Stop()
	}
}
