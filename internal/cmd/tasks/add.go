package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func AddCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "add TEXT",
		Short:        "Adds a new task",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return add(cmd.Context(), os.Stdout, strings.Join(args, " "))
		},
	}
}

func add(ctx context.Context, w io.Writer, text string) error {
	t, err := taskService.Create(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Added task %s\n", t.ID)
	return nil
}
