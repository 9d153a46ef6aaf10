//go:build !windows

package notification

import (
	"fmt"
	"syscall"
)

// restart replaces the current process image. It only returns on failure.
func restart(exe string, args, env []string) error {
	if err := syscall.Exec(exe, args, env); err != nil {
		return fmt.Errorf("failed to restart: %w", err)
	}
	return nil
}
