// Package notification presents detected updates to the user.
//
// A Banner is shown while an update is available and has not been dismissed. The user either
// applies the update, which restarts the process, or dismisses it for the rest of the session.
// Dismissal is sticky: versions detected after a dismissal are not announced again until restart.
package notification

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"

	"github.com/tasklist/taskboard/internal/msg"
	"github.com/tasklist/taskboard/internal/versioncheck"
)

// StateSource provides the current version check state.
type StateSource interface {
	State() versioncheck.State
}

// Reloader restarts the running client so that it picks up the newly deployed version.
type Reloader interface {
	Reload() error
}

// ReloaderFunc is an adapter to allow the use of ordinary functions as Reloader.
type ReloaderFunc func() error

func (f ReloaderFunc) Reload() error {
	return f()
}

// Phase is the presentation state of the banner.
type Phase string

const (
	// PhaseIdle means no update was detected.
	PhaseIdle Phase = "idle"
	// PhaseDetected means an update was detected and is announced.
	PhaseDetected Phase = "detected"
	// PhaseSuppressed means the user dismissed the announcement. Terminal until restart.
	PhaseSuppressed Phase = "suppressed"
)

// Action is the user's answer to the banner.
type Action int

const (
	ActionNone Action = iota
	ActionRefresh
	ActionDismiss
)

// ErrUnknownAction is returned by HandleInput for unrecognized input.
var ErrUnknownAction = errors.New(msg.UnknownAction)

// Banner projects the version check state plus a session-scoped dismissal flag into an update announcement.
type Banner struct {
	source    StateSource
	reloader  Reloader
	dismissed atomic.Bool
}

// NewBanner returns a Banner for the state of source that applies updates with reloader.
func NewBanner(source StateSource, reloader Reloader) *Banner {
	return &Banner{
		source:   source,
		reloader: reloader,
	}
}

// Visible returns true if an update is available and the user has not dismissed the banner.
func (b *Banner) Visible() bool {
	return b.source.State().UpdateAvailable && !b.dismissed.Load()
}

// Phase returns the current presentation state.
func (b *Banner) Phase() Phase {
	switch {
	case b.dismissed.Load():
		return PhaseSuppressed
	case b.source.State().UpdateAvailable:
		return PhaseDetected
	}
	return PhaseIdle
}

// Dismiss hides the banner for the rest of the session. It does not stop version checking.
func (b *Banner) Dismiss() {
	b.dismissed.Store(true)
}

// Refresh applies the update by restarting the client. On success, Refresh does not return.
func (b *Banner) Refresh() error {
	return b.reloader.Reload()
}

// HandleInput interprets a line of user input, executes the matching action and returns it.
// Input is ignored while the banner is not visible.
func (b *Banner) HandleInput(line string) (Action, error) {
	if !b.Visible() {
		return ActionNone, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "u", "update":
		return ActionRefresh, b.Refresh()
	case "l", "later":
		b.Dismiss()
		return ActionDismiss, nil
	case "":
		return ActionNone, nil
	}
	return ActionNone, fmt.Errorf("%w %q, choose one of: %s", ErrUnknownAction, strings.TrimSpace(line), msg.UpdateActions)
}

// Render writes the banner to w if it is visible and reports whether it did.
func (b *Banner) Render(w io.Writer) bool {
	if !b.Visible() {
		return false
	}
	st := b.source.State()

	bold := color.New(color.Bold, color.FgHiBlue).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	versions := fmt.Sprintf("%s → %s", st.CurrentVersion, st.NewVersion)
	if hint := direction(st.CurrentVersion, st.NewVersion); hint != "" {
		versions = fmt.Sprintf("%s (%s)", versions, hint)
	}

	_, _ = fmt.Fprintf(w, "🔄 %s %s\n   %s\n", bold(msg.UpdateAvailable), faint(versions), msg.UpdateActions)
	return true
}

// direction describes how the new version relates to the current one, if both are semantic versions.
func direction(current, next string) string {
	cv, err := semver.NewVersion(current)
	if err != nil {
		return ""
	}
	nv, err := semver.NewVersion(next)
	if err != nil {
		return ""
	}

	switch {
	case nv.GreaterThan(cv):
		return "upgrade"
	case nv.LessThan(cv):
		return "downgrade"
	}
	return ""
}
