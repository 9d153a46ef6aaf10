package msg

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// config
const (
	// MissingConfig indicates that required configuration keys are not set.
	MissingConfig = "missing required configuration: %s. Set TASKBOARD_* environment variables or use a config file"
	// ConfigNotFound indicates that an explicitly requested config file could not be read.
	ConfigNotFound = "%s: config file not found"
)

// backend
const (
	// InternalServerError indicates a server error on the task backend.
	InternalServerError = "internal server error"
	// TaskNotFound indicates that the task does not exist (any longer).
	TaskNotFound = "task not found"
	// EmptyTaskText indicates an attempt to create a task without text.
	EmptyTaskText = "task text must not be empty"
	// UnexpectedStatus indicates a non-success HTTP response.
	UnexpectedStatus = "unexpected response status"
	// MalformedVersion indicates that the version marker was not a plain version string.
	MalformedVersion = "malformed version marker"
)

// update notification
const (
	// UpdateAvailable is the banner headline.
	UpdateAvailable = "New version available!"
	// UpdateActions lists the keys the user can answer the banner with.
	UpdateActions = "[u] Update now  [l] Later"
	// UnknownAction indicates unrecognized banner input.
	UnknownAction = "unknown action"
	// Reloading is printed right before the process restarts itself.
	Reloading = "Restarting to load the new version..."
)

// LogUpdateCheckResult prints the outcome of a one-shot version check.
func LogUpdateCheckResult(current, latest string, available bool) {
	if !available {
		fmt.Printf("taskboard %s is up to date\n", current)
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("\n%s %s → %s\n\n", yellow(UpdateAvailable), current, latest)
}

// Error prints a color coded error line.
func Error(err error) {
	red := color.New(color.FgRed).SprintFunc()
	_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", red("ERROR"), err)
}
