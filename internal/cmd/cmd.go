package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasklist/taskboard/internal/config"
	"github.com/tasklist/taskboard/internal/viper"
)

// KeyConfigFile is the viper key holding the path of the config file given with --config.
const KeyConfigFile = "configFile"

// FullName returns the full command name by concatenating the command names of any parents,
// except the name of the CLI itself.
func FullName(cmd *cobra.Command) string {
	name := ""

	for cmd.HasParent() {
		// Prepending, because we are looking up names from the bottom up: add < tasks < taskboard
		// which ends up correctly as 'tasks add' (sans taskboard).
		name = fmt.Sprintf("%s %s", cmd.Name(), name)
		cmd = cmd.Parent()
	}

	return strings.TrimSpace(name)
}

// ClientConfig resolves and validates the client configuration for the executing command.
// A --backend flag of cmd takes precedence over all other sources of the backend URL. It is bound
// at execution time, since several commands declare their own --backend flag.
func ClientConfig(cmd *cobra.Command) (config.AppConfig, error) {
	if f := cmd.Flags().Lookup("backend"); f != nil {
		if err := viper.BindPFlag(config.KeyBackendURL, f); err != nil {
			return config.AppConfig{}, err
		}
	}

	cfg, err := config.Load(viper.GetString(KeyConfigFile))
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.Log()

	return cfg, nil
}
