//go:build windows

package notification

import (
	"fmt"
	"os"
	"os/exec"
)

// restart starts a new instance with the same console and exits. It only returns on failure.
func restart(exe string, args, env []string) error {
	cmd := exec.Command(exe, args[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to restart: %w", err)
	}
	os.Exit(0)
	return nil
}
