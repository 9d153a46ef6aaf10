package tasks

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func ToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "toggle ID",
		Short:        "Marks a task as done, or as not done if it already is",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggle(cmd.Context(), os.Stdout, args[0])
		},
	}
}

func toggle(ctx context.Context, w io.Writer, id string) error {
	t, err := taskService.Toggle(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to toggle task %s: %w", id, err)
	}

	state := "not done"
	if t.Completed {
		state = "done"
	}
	_, _ = fmt.Fprintf(w, "Task %s is %s\n", t.ID, state)
	return nil
}
