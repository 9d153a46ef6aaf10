package tasks

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func RemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use: "rm ID",
		Aliases: []string{
			"remove",
			"delete",
		},
		Short:        "Deletes a task",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return remove(cmd.Context(), os.Stdout, args[0])
		},
	}
}

func remove(ctx context.Context, w io.Writer, id string) error {
	if err := taskService.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}

	_, _ = fmt.Fprintf(w, "Deleted task %s\n", id)
	return nil
}
