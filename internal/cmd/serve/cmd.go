package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmds "github.com/tasklist/taskboard/internal/cmd"
	"github.com/tasklist/taskboard/internal/config"
	"github.com/tasklist/taskboard/internal/server"
	"github.com/tasklist/taskboard/internal/task"
	"github.com/tasklist/taskboard/internal/viper"
)

// Command creates the `serve` command.
func Command(preRun func(cmd *cobra.Command, args []string)) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Runs the taskboard backend",
		Long:         "Serves the deployed version marker, the runtime configuration and the task API.",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if preRun != nil {
				preRun(cmd, args)
			}
			return bindFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadServeFrom(viper.Default, viper.GetString(cmds.KeyConfigFile))
			if err != nil {
				return err
			}
			cfg.Log()

			store, err := task.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open task store: %w", err)
			}
			defer store.Close()

			return server.New(cfg, store).ListenAndServe(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("addr", config.DefaultAddr, "Address to listen on")
	flags.String("db", config.DefaultDBPath, "Path of the SQLite task database, or :memory:")
	flags.String("version-file", "", "File holding the deployed version. Re-read on every request.")
	flags.String("release", "", "Deployed version to publish. Overrides the build version.")
	flags.String("backend", "", "Public base URL of the backend, as published in the runtime configuration")

	return cmd
}

func bindFlags(flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"addr":         config.KeyAddr,
		"db":           config.KeyDBPath,
		"version-file": config.KeyVersionFile,
		"release":      config.KeyVersion,
		"backend":      config.KeyBackendURL,
	}
	for name, key := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
