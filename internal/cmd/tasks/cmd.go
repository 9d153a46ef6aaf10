package tasks

import (
	"time"

	"github.com/spf13/cobra"

	cmds "github.com/tasklist/taskboard/internal/cmd"
	"github.com/tasklist/taskboard/internal/http"
	"github.com/tasklist/taskboard/internal/task"
)

var (
	taskService    task.Service
	backendTimeout = 30 * time.Second
)

// Command creates the `tasks` command
func Command(preRun func(cmd *cobra.Command, args []string)) *cobra.Command {
	cmd := &cobra.Command{
		Use:              "tasks",
		Short:            "Manage the task list",
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if preRun != nil {
				preRun(cmd, args)
			}

			cfg, err := cmds.ClientConfig(cmd)
			if err != nil {
				return err
			}

			svc := http.NewTaskService(cfg.BackendURL, backendTimeout)
			taskService = &svc

			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("backend", "", "Base URL of the taskboard backend, e.g. http://localhost:8080")

	cmd.AddCommand(
		ListCommand(),
		AddCommand(),
		ToggleCommand(),
		RemoveCommand(),
	)

	return cmd
}
