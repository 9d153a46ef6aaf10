package notification

import (
	"fmt"
	"os"

	"github.com/tasklist/taskboard/internal/msg"
)

// ExecReloader restarts the running binary with its original arguments and environment,
// which is the equivalent of a fresh process start.
type ExecReloader struct {
	// BeforeExec, if set, runs right before the restart, e.g. to restore the terminal.
	BeforeExec func()
}

func (r ExecReloader) Reload() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	fmt.Println(msg.Reloading)
	if r.BeforeExec != nil {
		r.BeforeExec()
	}
	return restart(exe, os.Args, os.Environ())
}
