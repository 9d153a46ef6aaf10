package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasklist/taskboard/internal/tables"
)

const (
	JSONOutput = "json"
	TextOutput = "text"
)

func ListCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use: "list",
		Aliases: []string{
			"ls",
		},
		Short:        "Returns the list of tasks, newest first",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out != JSONOutput && out != TextOutput {
				return errors.New("unknown output format")
			}
			return list(cmd.Context(), os.Stdout, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", "text", "Output format to the console. Options: text, json.")

	return cmd
}

func list(ctx context.Context, w io.Writer, format string) error {
	tasks, err := taskService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}

	switch format {
	case JSONOutput:
		if err := json.NewEncoder(w).Encode(tasks); err != nil {
			return fmt.Errorf("failed to render output: %w", err)
		}
	case TextOutput:
		_, _ = fmt.Fprintln(w, tables.Tasks(tasks))
	}

	return nil
}
