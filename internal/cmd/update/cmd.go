package update

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cmds "github.com/tasklist/taskboard/internal/cmd"
	"github.com/tasklist/taskboard/internal/http"
	"github.com/tasklist/taskboard/internal/msg"
	"github.com/tasklist/taskboard/internal/versioncheck"
)

// Command creates the `check-update` command.
func Command(preRun func(cmd *cobra.Command, args []string)) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:          "check-update",
		Short:        "Checks once whether a newer version has been deployed",
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			if preRun != nil {
				preRun(cmd, args)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmds.ClientConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.IsDevBuild() {
				log.Warn().Msg("This is a development build. Update detection is disabled.")
			}

			svc := http.NewVersionService(cfg.BackendURL, timeout)
			latest, err := svc.LatestVersion(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to look up the deployed version: %w", err)
			}

			msg.LogUpdateCheckResult(cfg.Version, latest, versioncheck.IsUpdate(cfg.Version, latest))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("backend", "", "Base URL of the taskboard backend, e.g. http://localhost:8080")
	flags.DurationVar(&timeout, "timeout", 10*time.Second, "Time to wait for the version marker")

	return cmd
}
